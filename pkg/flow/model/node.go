package model

// NodeType is the variant of a node.
type NodeType string

const (
	ExecutionNodeType    NodeType = "execution_node"
	BindingEntryNodeType NodeType = "binding_entry_node"
	BindingExitNodeType  NodeType = "binding_exit_node"
	SuperNodeType        NodeType = "super_node"
)

// Node is a vertex of a pipeline. Supernode fields are only meaningful when
// Type is SuperNodeType.
type Node struct {
	ID          string         `json:"id" validate:"required"`
	Type        NodeType       `json:"type" validate:"required,oneof=execution_node binding_entry_node binding_exit_node super_node"`
	Op          string         `json:"op,omitempty"`
	Label       string         `json:"label,omitempty"`
	Inputs      []*Port        `json:"inputs,omitempty" validate:"dive,required"`
	Outputs     []*Port        `json:"outputs,omitempty" validate:"dive,required"`
	XPos        float64        `json:"x_pos"`
	YPos        float64        `json:"y_pos"`
	ClassName   string         `json:"class_name,omitempty"`
	Decorations []*Decoration  `json:"decorations,omitempty" validate:"dive,required"`
	AppData     map[string]any `json:"app_data,omitempty"`

	SubPipelineIDs         []string `json:"sub_pipeline_ids,omitempty"`
	IsExpanded             bool     `json:"is_expanded,omitempty"`
	ExternalURL            string   `json:"external_url,omitempty"`
	ExternalPipelineFlowID string   `json:"external_pipeline_flow_id,omitempty"`

	Shape *Shape `json:"-"`
}

// IsSupernode reports whether the node owns sub-pipelines.
func (n *Node) IsSupernode() bool {
	return n.Type == SuperNodeType
}

// IsBinding reports whether the node maps a sub-pipeline port to its supernode.
func (n *Node) IsBinding() bool {
	return n.Type == BindingEntryNodeType || n.Type == BindingExitNodeType
}

// IsExternal reports whether the supernode's sub-pipeline is stored by the host.
func (n *Node) IsExternal() bool {
	return n.ExternalURL != ""
}

// SubPipelineID returns the first sub-pipeline of a supernode.
func (n *Node) SubPipelineID() string {
	if len(n.SubPipelineIDs) == 0 {
		return ""
	}
	return n.SubPipelineIDs[0]
}

// InputPort returns the input port with the given id.
func (n *Node) InputPort(id string) *Port {
	return findPort(n.Inputs, id)
}

// OutputPort returns the output port with the given id.
func (n *Node) OutputPort(id string) *Port {
	return findPort(n.Outputs, id)
}

func findPort(ports []*Port, id string) *Port {
	for _, p := range ports {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Port is an input or output connection point of a node.
type Port struct {
	ID          string         `json:"id" validate:"required"`
	Label       string         `json:"label,omitempty"`
	Cardinality *Cardinality   `json:"cardinality,omitempty"`
	AppData     map[string]any `json:"app_data,omitempty"`

	Shape *Shape `json:"-"`
}

// Cardinality bounds the number of links a port accepts.
type Cardinality struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Decoration is an image or label drawn on a node or link. Temporary
// decorations are never serialized.
type Decoration struct {
	ID        string  `json:"id" validate:"required"`
	Label     string  `json:"label,omitempty"`
	Image     string  `json:"image,omitempty"`
	Position  string  `json:"position,omitempty"`
	XPos      float64 `json:"x_pos,omitempty"`
	YPos      float64 `json:"y_pos,omitempty"`
	ClassName string  `json:"class_name,omitempty"`
	Hotspot   bool    `json:"hotspot,omitempty"`
	Temporary bool    `json:"temporary,omitempty"`

	Shape *Shape `json:"-"`
}
