package compose

import "gopkg.in/yaml.v3"

// Small yaml.Node constructors. The document is assembled from nodes so
// anchors and aliases land exactly where the descriptor needs them; plain
// struct marshalling cannot express them.

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequence(items ...string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		n.Content = append(n.Content, scalar(item))
	}
	return n
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func alias(anchor string) *yaml.Node {
	return &yaml.Node{Kind: yaml.AliasNode, Value: anchor}
}

func put(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

// fragment names an extra key attached to a service node after encoding,
// typically an alias into a shared anchored block.
type fragment struct {
	key  string
	node *yaml.Node
}

func withSharedFragments() []fragment {
	return []fragment{
		{key: "environment", node: alias(anchorSharedEnv)},
		{key: "volumes", node: alias(anchorSharedVolumes)},
	}
}

// addService encodes the typed service spec into the services mapping and
// attaches any shared fragments.
func addService(services *yaml.Node, name string, spec Service, fragments ...fragment) error {
	n := &yaml.Node{}
	if err := n.Encode(spec); err != nil {
		return err
	}
	for _, f := range fragments {
		n.Content = append(n.Content, scalar(f.key), f.node)
	}
	put(services, name, n)
	return nil
}
