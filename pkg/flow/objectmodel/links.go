package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// AddLink appends l to the pipeline after checking its endpoints.
func (s *Store) AddLink(pipelineID string, l *model.Link) error {
	return s.InsertLink(pipelineID, -1, l)
}

// InsertLink puts l at position idx of the pipeline; a negative idx appends.
func (s *Store) InsertLink(pipelineID string, idx int, l *model.Link) error {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return err
	}
	if l == nil {
		return errors.Wrap(model.ErrSchema, "link is nil")
	}
	if err := model.ValidateStruct(l); err != nil {
		return err
	}
	if p.links.Has(l.ID) {
		return errors.Wrapf(model.ErrReference, "link %s already exists in pipeline %s", l.ID, p.id)
	}
	if err := p.checkLink(l); err != nil {
		return errors.Wrap(model.ErrReference, err.Error())
	}

	if idx < 0 {
		p.links.Set(l.ID, l.Clone())
	} else {
		p.links.Insert(idx, l.ID, l.Clone())
	}
	s.markSeen(l.ID)
	s.mutated()

	return nil
}

// DeleteLink removes a link and returns it with its former position.
func (s *Store) DeleteLink(pipelineID, linkID string) (Indexed[*model.Link], error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return Indexed[*model.Link]{}, err
	}
	l, err := p.link(linkID)
	if err != nil {
		return Indexed[*model.Link]{}, err
	}
	removed := p.removeLinks([]*model.Link{l})
	s.mutated()
	return removed[0], nil
}

// ReplaceLinks swaps whole links in place and returns the previous versions.
func (s *Store) ReplaceLinks(pipelineID string, links []*model.Link) ([]*model.Link, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	prev := make([]*model.Link, 0, len(links))
	for _, l := range links {
		if l == nil {
			return nil, errors.Wrap(model.ErrSchema, "link is nil")
		}
		old, err := p.link(l.ID)
		if err != nil {
			return nil, err
		}
		if err := model.ValidateStruct(l); err != nil {
			return nil, err
		}
		if err := p.checkLink(l); err != nil {
			return nil, errors.Wrap(model.ErrReference, err.Error())
		}
		prev = append(prev, old.Clone())
	}

	for _, l := range links {
		p.links.Set(l.ID, l.Clone())
	}
	s.mutated()

	return prev, nil
}

// SetLinkProperties applies props to a link and returns the previous link.
func (s *Store) SetLinkProperties(pipelineID, linkID string, props model.LinkProperties) (*model.Link, error) {
	l, err := s.Link(pipelineID, linkID)
	if err != nil {
		return nil, err
	}
	props.Apply(l)
	prev, err := s.ReplaceLinks(pipelineID, []*model.Link{l})
	if err != nil {
		return nil, err
	}
	return prev[0], nil
}

// SetLinksClassName sets the class name of several links at once.
func (s *Store) SetLinksClassName(pipelineID string, linkIDs []string, className string) ([]*model.Link, error) {
	updated := make([]*model.Link, 0, len(linkIDs))
	for _, id := range linkIDs {
		l, err := s.Link(pipelineID, id)
		if err != nil {
			return nil, err
		}
		l.ClassName = className
		updated = append(updated, l)
	}
	return s.ReplaceLinks(pipelineID, updated)
}
