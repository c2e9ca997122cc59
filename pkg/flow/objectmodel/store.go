package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/internal/store"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Listener is called after the store changed.
type Listener func()

// Indexed is a value removed from an ordered arena, with its former position.
type Indexed[T any] struct {
	Index int
	Value T
}

// Store owns the pipelines of one pipeline flow document.
type Store struct {
	docType           string
	version           string
	docID             string
	appData           map[string]any
	shape             *model.Shape
	primaryPipelineID string
	pipelines         *store.OrderedMap[string, *pipeline]

	// seen holds every object id ever added, so generated ids are never reused.
	seen map[string]struct{}

	listeners    *store.OrderedMap[int, Listener]
	nextListener int
	batchDepth   int
	changed      bool
}

// New creates an empty store. It has no pipeline until SetPipelineFlow is called.
func New() *Store {
	return &Store{
		version:   model.SchemaVersion,
		pipelines: store.NewOrderedMap[string, *pipeline](),
		seen:      make(map[string]struct{}),
		listeners: store.NewOrderedMap[int, Listener](),
	}
}

// SetPipelineFlow replaces the whole content of the store with doc.
func (s *Store) SetPipelineFlow(doc *model.Document) error {
	if err := model.ValidateDocument(doc); err != nil {
		return err
	}

	pipelines := store.NewOrderedMap[string, *pipeline]()
	for _, p := range doc.Pipelines {
		if pipelines.Has(p.ID) {
			return errors.Wrapf(model.ErrSchema, "duplicate pipeline id %s", p.ID)
		}
		np, err := newPipeline(p)
		if err != nil {
			return errors.Wrap(model.ErrSchema, err.Error())
		}
		pipelines.Set(p.ID, np)
	}
	if !pipelines.Has(doc.PrimaryPipeline) {
		return errors.Wrapf(model.ErrSchema, "primary pipeline %s not found", doc.PrimaryPipeline)
	}
	if err := linkPipelines(pipelines); err != nil {
		return errors.Wrap(model.ErrSchema, err.Error())
	}

	s.docType = doc.DocType
	s.version = doc.Version
	s.docID = doc.ID
	s.appData = model.CloneAppData(doc.AppData)
	s.shape = doc.Shape
	s.primaryPipelineID = doc.PrimaryPipeline
	s.pipelines = pipelines
	s.seen = make(map[string]struct{})
	pipelines.Each(func(id string, p *pipeline) bool {
		s.markSeen(id)
		p.each(s.markSeen)
		return true
	})
	s.mutated()

	return nil
}

// linkPipelines derives parent pipeline ids and checks supernode references
// and binding ports across pipelines.
func linkPipelines(pipelines *store.OrderedMap[string, *pipeline]) error {
	var err error
	pipelines.Each(func(pid string, p *pipeline) bool {
		p.nodes.Each(func(_ string, n *model.Node) bool {
			if !n.IsSupernode() {
				return true
			}
			if len(n.SubPipelineIDs) == 0 {
				err = errors.Errorf("supernode %s has no sub-pipeline", n.ID)
				return false
			}
			for _, subID := range n.SubPipelineIDs {
				sub, ok := pipelines.Get(subID)
				if !ok {
					if n.IsExternal() {
						continue
					}
					err = errors.Errorf("supernode %s references missing pipeline %s", n.ID, subID)
					return false
				}
				if sub.parentPipelineID == "" {
					sub.parentPipelineID = pid
				}
				if err = checkBindings(n, sub); err != nil {
					return false
				}
			}
			return true
		})
		return err == nil
	})
	return err
}

// checkBindings verifies that the binding nodes of sub map to ports of sn.
func checkBindings(sn *model.Node, sub *pipeline) error {
	var err error
	sub.nodes.Each(func(_ string, n *model.Node) bool {
		err = bindingPortsMatch(sn, n)
		return err == nil
	})
	return err
}

// bindingPortsMatch verifies that a binding entry node only exposes input
// ports of its supernode and a binding exit node only its output ports.
func bindingPortsMatch(sn, n *model.Node) error {
	switch n.Type {
	case model.BindingEntryNodeType:
		for _, port := range n.Outputs {
			if sn.InputPort(port.ID) == nil {
				return errors.Errorf("binding node %s port %s has no matching input port on supernode %s", n.ID, port.ID, sn.ID)
			}
		}
	case model.BindingExitNodeType:
		for _, port := range n.Inputs {
			if sn.OutputPort(port.ID) == nil {
				return errors.Errorf("binding node %s port %s has no matching output port on supernode %s", n.ID, port.ID, sn.ID)
			}
		}
	}
	return nil
}

// PipelineFlow serializes the local pipelines back to a document. Temporary
// decorations and externally stored pipelines are left out.
func (s *Store) PipelineFlow() *model.Document {
	doc := s.header()
	s.pipelines.Each(func(_ string, p *pipeline) bool {
		if p.externalURL == "" {
			doc.Pipelines = append(doc.Pipelines, p.export(true))
		}
		return true
	})
	return doc
}

// ExternalPipelineFlows returns one document per external URL holding the
// pipelines the host must store at that URL. The primary pipeline of each
// document is the first one whose parent is stored elsewhere.
func (s *Store) ExternalPipelineFlows() map[string]*model.Document {
	res := make(map[string]*model.Document)
	s.pipelines.Each(func(_ string, p *pipeline) bool {
		if p.externalURL == "" {
			return true
		}
		doc, ok := res[p.externalURL]
		if !ok {
			doc = &model.Document{
				DocType: s.docType,
				Version: s.version,
				ID:      p.externalFlowID,
			}
			res[p.externalURL] = doc
		}
		if doc.PrimaryPipeline == "" && !s.storedAt(p.parentPipelineID, p.externalURL) {
			doc.PrimaryPipeline = p.id
		}
		doc.Pipelines = append(doc.Pipelines, p.export(true))
		return true
	})
	for _, doc := range res {
		if doc.PrimaryPipeline == "" {
			doc.PrimaryPipeline = doc.Pipelines[0].ID
		}
	}
	return res
}

func (s *Store) storedAt(pipelineID, url string) bool {
	p, ok := s.pipelines.Get(pipelineID)
	return ok && p.externalURL == url
}

// Snapshot returns every pipeline, local and external, with transient data.
// Two snapshots of the same state are structurally equal.
func (s *Store) Snapshot() *model.Document {
	doc := s.header()
	s.pipelines.Each(func(_ string, p *pipeline) bool {
		doc.Pipelines = append(doc.Pipelines, p.export(false))
		return true
	})
	return doc
}

func (s *Store) header() *model.Document {
	return &model.Document{
		DocType:         s.docType,
		Version:         s.version,
		ID:              s.docID,
		PrimaryPipeline: s.primaryPipelineID,
		AppData:         model.CloneAppData(s.appData),
		Shape:           s.shape,
	}
}

// PrimaryPipelineID returns the id of the top level pipeline.
func (s *Store) PrimaryPipelineID() string {
	return s.primaryPipelineID
}

// Seen reports whether id was ever used by a pipeline or one of its objects.
func (s *Store) Seen(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *Store) markSeen(id string) {
	s.seen[id] = struct{}{}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	id := s.nextListener
	s.nextListener++
	s.listeners.Set(id, l)
	return func() {
		s.listeners.Delete(id)
	}
}

// Batch runs fn and notifies listeners at most once, after the outermost batch.
func (s *Store) Batch(fn func() error) error {
	s.batchDepth++
	err := fn()
	s.batchDepth--
	if s.batchDepth == 0 && s.changed {
		s.changed = false
		s.notify()
	}
	return err
}

// Touch notifies listeners of a change kept outside the store, such as the
// pipeline on display.
func (s *Store) Touch() {
	s.mutated()
}

func (s *Store) mutated() {
	s.changed = true
	if s.batchDepth == 0 {
		s.changed = false
		s.notify()
	}
}

func (s *Store) notify() {
	for _, l := range s.listeners.Values() {
		l()
	}
}

func (s *Store) pipeline(id string) (*pipeline, error) {
	p, ok := s.pipelines.Get(id)
	if !ok {
		return nil, errors.Wrapf(model.ErrReference, "pipeline %s not found", id)
	}
	return p, nil
}
