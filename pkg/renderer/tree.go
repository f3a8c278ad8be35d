package renderer

import "go.uber.org/zap"

// Node kinds produced in interactive mode.
const (
	NodeSection = "section"
	NodeText    = "text"
	NodeList    = "list"
	NodeFiller  = "filler"
)

// Node is one renderable element of the interactive output tree. The hosting
// UI decides how to paint it.
type Node struct {
	Kind        string            `json:"kind"`
	SectionType string            `json:"section_type,omitempty"`
	Columns     int               `json:"columns,omitempty"`
	Rows        int               `json:"rows,omitempty"`
	Text        string            `json:"text,omitempty"`
	Placement   *Placement        `json:"placement,omitempty"`
	Props       map[string]string `json:"props,omitempty"`
	Children    []*Node           `json:"children,omitempty"`
}

// TreeResult is the interactive render output.
type TreeResult struct {
	Nodes  []*Node `json:"nodes"`
	Styles string  `json:"styles"`
}

// RenderTree lays out the template in interactive mode, producing a node
// tree with the same structure the serializable mode flattens to markup.
func RenderTree(tpl *Template, data map[string]any, log *zap.Logger) (*TreeResult, error) {
	em := &TreeEmitter{}
	styles, err := NewEngine(log).Render(tpl, data, em)
	if err != nil {
		return nil, err
	}
	return &TreeResult{Nodes: em.Nodes(), Styles: styles}, nil
}

// TreeEmitter materializes layout events as a Node tree.
type TreeEmitter struct {
	roots []*Node
	stack []*Node
}

// Nodes returns the accumulated top-level section nodes.
func (t *TreeEmitter) Nodes() []*Node { return t.roots }

func (t *TreeEmitter) BeginSection(sectionType string, columns, rows int) {
	t.push(&Node{
		Kind:        NodeSection,
		SectionType: sectionType,
		Columns:     columns,
		Rows:        rows,
	})
}

func (t *TreeEmitter) EndSection() { t.pop() }

func (t *TreeEmitter) Text(content string, place Placement, props map[string]string) {
	p := place
	t.append(&Node{
		Kind:      NodeText,
		Text:      content,
		Placement: &p,
		Props:     props,
	})
}

func (t *TreeEmitter) BeginList(columns int, place Placement) {
	p := place
	t.push(&Node{
		Kind:      NodeList,
		Columns:   columns,
		Placement: &p,
	})
}

func (t *TreeEmitter) EndList() { t.pop() }

func (t *TreeEmitter) Filler() {
	t.append(&Node{Kind: NodeFiller})
}

func (t *TreeEmitter) push(n *Node) {
	t.append(n)
	t.stack = append(t.stack, n)
}

func (t *TreeEmitter) pop() {
	if len(t.stack) > 0 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

func (t *TreeEmitter) append(n *Node) {
	if len(t.stack) == 0 {
		t.roots = append(t.roots, n)
		return
	}
	parent := t.stack[len(t.stack)-1]
	parent.Children = append(parent.Children, n)
}
