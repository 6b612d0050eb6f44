package envfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeKeys = Table{
	{Key: "A", Value: "1"},
	{Key: "B", Value: "2"},
	{Key: "C", Value: "3"},
}

func TestMergeIntoEmptyFile(t *testing.T) {
	f := Parse(nil)
	report, err := Merge(f, threeKeys, "added by setup")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Added())
	assert.Equal(t, "# added by setup\nA=1\nB=2\nC=3\n", string(f.Bytes()))
}

func TestMergeKeepsExistingValue(t *testing.T) {
	f := Parse([]byte("A=99\n"))
	report, err := Merge(f, threeKeys, "added by setup")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Added())
	v, _ := f.Get("A")
	assert.Equal(t, "99", v)
	assert.Equal(t, "A=99\n# added by setup\nB=2\nC=3\n", string(f.Bytes()))
}

func TestMergeIdempotence(t *testing.T) {
	f := Parse([]byte("PRE=existing\n"))

	first, err := Merge(f, threeKeys, "added by setup")
	require.NoError(t, err)
	require.Equal(t, 3, first.Added())
	after := string(f.Bytes())

	second, err := Merge(f, threeKeys, "added by setup")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added())
	assert.Equal(t, after, string(f.Bytes()), "second pass must not write anything")
}

func TestMergeLeavesDuplicatesAlone(t *testing.T) {
	f := Parse([]byte("A=1\nA=2\n"))
	report, err := Merge(f, Table{{Key: "A", Value: "9"}}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Added())
	assert.Equal(t, "A=1\nA=2\n", string(f.Bytes()))
}

func TestMergeGeneratedValueOnlyWhenAbsent(t *testing.T) {
	calls := 0
	table := Table{{
		Key: "N8N_ENCRYPTION_KEY",
		Generate: func() (string, error) {
			calls++
			return "generated-secret", nil
		},
	}}

	f := Parse([]byte("N8N_ENCRYPTION_KEY=operator-set\n"))
	_, err := Merge(f, table, "")
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "present key must not mint a secret")

	f = Parse(nil)
	report, err := Merge(f, table, "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Equal(t, 1, report.Added())
	assert.Equal(t, "generated-secret", report[0].Value)
}

func TestMergeNoHeaderWhenNothingAdded(t *testing.T) {
	f := Parse([]byte("A=1\nB=2\nC=3\n"))
	_, err := Merge(f, threeKeys, "added by setup")
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=2\nC=3\n", string(f.Bytes()))
}
