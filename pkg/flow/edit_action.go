package flow

import "github.com/askiada/go-pipeline-flow/pkg/flow/model"

// EditType names an edit the host is asked about before it happens.
type EditType string

const (
	EditTypeCreateSuperNodeExternal         EditType = "createSuperNodeExternal"
	EditTypeConvertSuperNodeLocalToExternal EditType = "convertSuperNodeLocalToExternal"
	EditTypeConvertSuperNodeExternalToLocal EditType = "convertSuperNodeExternalToLocal"
	EditTypeLoadPipelineFlow                EditType = "loadPipelineFlow"
	EditTypeExpandSuperNodeInPlace          EditType = "expandSuperNodeInPlace"
	EditTypeDisplaySubPipeline              EditType = "displaySubPipeline"
)

// EditAction is handed to the host before an edit that needs its help. The
// host fills in the external fields it owns and returns the action.
type EditAction struct {
	EditType          EditType
	PipelineID        string
	SupernodeID       string
	SelectedObjectIDs []string

	ExternalURL              string
	ExternalPipelineFlowID   string
	ExternalPipelineFlowLoad bool
	// ExternalPipelineFlow is the document fetched by the host when
	// ExternalPipelineFlowLoad is set.
	ExternalPipelineFlow *model.Document
}

// BeforeEditActionHandler is called synchronously before an edit. Returning
// nil cancels the edit.
type BeforeEditActionHandler func(action *EditAction) (*EditAction, error)
