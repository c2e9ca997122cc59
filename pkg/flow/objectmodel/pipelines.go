package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// AddPipeline inserts a pipeline at position idx of the document; a negative
// idx appends. When ParentPipelineID is empty it is derived from the
// supernodes referencing the pipeline.
func (s *Store) AddPipeline(p *model.Pipeline, idx int) error {
	if p == nil {
		return errors.Wrap(model.ErrSchema, "pipeline is nil")
	}
	if err := model.ValidateStruct(p); err != nil {
		return err
	}
	if s.pipelines.Has(p.ID) {
		return errors.Wrapf(model.ErrReference, "pipeline %s already exists", p.ID)
	}
	np, err := newPipeline(p)
	if err != nil {
		return errors.Wrap(model.ErrSchema, err.Error())
	}
	if np.parentPipelineID == "" {
		if refs := s.SupernodesReferencing(p.ID); len(refs) > 0 {
			np.parentPipelineID = refs[0].PipelineID
		}
	}
	if sn := s.owner(np); sn != nil {
		if err := checkBindings(sn, np); err != nil {
			return errors.Wrap(model.ErrReference, err.Error())
		}
	}

	if idx < 0 {
		s.pipelines.Set(p.ID, np)
	} else {
		s.pipelines.Insert(idx, p.ID, np)
	}
	s.markSeen(p.ID)
	np.each(s.markSeen)
	s.mutated()

	return nil
}

// RemovePipeline removes a pipeline and returns it with its former position.
// The primary pipeline cannot be removed.
func (s *Store) RemovePipeline(id string) (Indexed[*model.Pipeline], error) {
	p, err := s.pipeline(id)
	if err != nil {
		return Indexed[*model.Pipeline]{}, err
	}
	if id == s.primaryPipelineID {
		return Indexed[*model.Pipeline]{}, errors.Wrapf(model.ErrReference, "pipeline %s is the primary pipeline", id)
	}
	res := Indexed[*model.Pipeline]{Value: p.export(false)}
	res.Index = s.pipelines.Delete(id)
	s.mutated()
	return res, nil
}

// SetPipelineExternal marks a pipeline as stored by the host at url, or as
// local again when url is empty. It returns the previous marks.
func (s *Store) SetPipelineExternal(id, url, flowID string) (string, string, error) {
	p, err := s.pipeline(id)
	if err != nil {
		return "", "", err
	}
	prevURL, prevFlowID := p.externalURL, p.externalFlowID
	p.externalURL = url
	p.externalFlowID = flowID
	s.mutated()
	return prevURL, prevFlowID, nil
}

// Descendants returns the pipelines nested under the supernodes of id,
// depth first, not including id itself. Pipelines that are not loaded are skipped.
func (s *Store) Descendants(id string) []string {
	var res []string
	visited := map[string]struct{}{id: {}}
	var walk func(pid string)
	walk = func(pid string) {
		p, ok := s.pipelines.Get(pid)
		if !ok {
			return
		}
		p.nodes.Each(func(_ string, n *model.Node) bool {
			for _, sub := range n.SubPipelineIDs {
				if _, ok := visited[sub]; ok || !s.pipelines.Has(sub) {
					continue
				}
				visited[sub] = struct{}{}
				res = append(res, sub)
				walk(sub)
			}
			return true
		})
	}
	walk(id)
	return res
}

// SetPipelineParent records that id is now owned by a supernode of parentID.
// It returns the previous parent.
func (s *Store) SetPipelineParent(id, parentID string) (string, error) {
	p, err := s.pipeline(id)
	if err != nil {
		return "", err
	}
	if parentID != "" && !s.pipelines.Has(parentID) {
		return "", errors.Wrapf(model.ErrReference, "pipeline %s not found", parentID)
	}
	prev := p.parentPipelineID
	p.parentPipelineID = parentID
	s.mutated()
	return prev, nil
}
