package model

// Breadcrumb describes one displayed pipeline and how it was reached. The
// root breadcrumb has no supernode.
type Breadcrumb struct {
	PipelineID                string `json:"pipelineId" validate:"required"`
	SupernodeID               string `json:"supernodeId,omitempty"`
	SupernodeParentPipelineID string `json:"supernodeParentPipelineId,omitempty"`
	ExternalURL               string `json:"externalUrl,omitempty"`
	Label                     string `json:"label,omitempty"`
}

// IsRoot reports whether the breadcrumb is the primary pipeline entry.
func (b Breadcrumb) IsRoot() bool {
	return b.SupernodeID == ""
}
