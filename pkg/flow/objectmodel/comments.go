package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// CommentRemoval is what DeleteComment took out of a pipeline.
type CommentRemoval struct {
	PipelineID string
	Comment    Indexed[*model.Comment]
	Links      []Indexed[*model.Link]
}

// AddComment appends c to the pipeline.
func (s *Store) AddComment(pipelineID string, c *model.Comment) error {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.Wrap(model.ErrSchema, "comment is nil")
	}
	if err := model.ValidateStruct(c); err != nil {
		return err
	}
	if p.comments.Has(c.ID) {
		return errors.Wrapf(model.ErrReference, "comment %s already exists in pipeline %s", c.ID, p.id)
	}

	p.comments.Set(c.ID, c.Clone())
	s.markSeen(c.ID)
	s.mutated()

	return nil
}

// DeleteComment removes a comment and the comment links leaving it.
func (s *Store) DeleteComment(pipelineID, commentID string) (*CommentRemoval, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	c, err := p.comment(commentID)
	if err != nil {
		return nil, err
	}

	rem := &CommentRemoval{PipelineID: pipelineID}
	rem.Links = p.removeLinks(p.linksTouching(commentID))
	rem.Comment = Indexed[*model.Comment]{Index: p.comments.Delete(commentID), Value: c.Clone()}
	s.mutated()

	return rem, nil
}

// RestoreComment puts back what DeleteComment removed.
func (s *Store) RestoreComment(rem *CommentRemoval) error {
	p, err := s.pipeline(rem.PipelineID)
	if err != nil {
		return err
	}
	if p.comments.Has(rem.Comment.Value.ID) {
		return errors.Wrapf(model.ErrReference, "comment %s already exists in pipeline %s", rem.Comment.Value.ID, p.id)
	}
	for _, l := range rem.Links {
		if !p.nodes.Has(l.Value.TrgNodeID) {
			return errors.Wrapf(model.ErrReference, "link %s target %s not found in pipeline %s", l.Value.ID, l.Value.TrgNodeID, p.id)
		}
	}

	p.comments.Insert(rem.Comment.Index, rem.Comment.Value.ID, rem.Comment.Value.Clone())
	p.restoreLinks(rem.Links)
	s.mutated()

	return nil
}

// ReplaceComments swaps whole comments in place and returns the previous versions.
func (s *Store) ReplaceComments(pipelineID string, comments []*model.Comment) ([]*model.Comment, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	prev := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			return nil, errors.Wrap(model.ErrSchema, "comment is nil")
		}
		old, err := p.comment(c.ID)
		if err != nil {
			return nil, err
		}
		prev = append(prev, old.Clone())
	}

	for _, c := range comments {
		p.comments.Set(c.ID, c.Clone())
	}
	s.mutated()

	return prev, nil
}

// SetCommentProperties applies props to a comment and returns the previous comment.
func (s *Store) SetCommentProperties(pipelineID, commentID string, props model.CommentProperties) (*model.Comment, error) {
	c, err := s.Comment(pipelineID, commentID)
	if err != nil {
		return nil, err
	}
	props.Apply(c)
	prev, err := s.ReplaceComments(pipelineID, []*model.Comment{c})
	if err != nil {
		return nil, err
	}
	return prev[0], nil
}

// SetCommentsClassName sets the class name of several comments at once.
func (s *Store) SetCommentsClassName(pipelineID string, commentIDs []string, className string) ([]*model.Comment, error) {
	updated := make([]*model.Comment, 0, len(commentIDs))
	for _, id := range commentIDs {
		c, err := s.Comment(pipelineID, id)
		if err != nil {
			return nil, err
		}
		c.ClassName = className
		updated = append(updated, c)
	}
	return s.ReplaceComments(pipelineID, updated)
}
