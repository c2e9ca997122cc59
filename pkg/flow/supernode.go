package flow

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/breadcrumb"
	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

func (c *Controller) supernode(pipelineID, nodeID string) (string, *model.Node, error) {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return "", nil, err
	}
	n, err := c.store.Node(pid, nodeID)
	if err != nil {
		return "", nil, err
	}
	if !n.IsSupernode() {
		return "", nil, errors.Wrapf(model.ErrReference, "node %s is not a supernode", nodeID)
	}
	if n.SubPipelineID() == "" {
		return "", nil, errors.Wrapf(model.ErrReference, "supernode %s has no sub-pipeline", nodeID)
	}
	return pid, n, nil
}

func (c *Controller) ExpandSuperNodeInPlace(pipelineID, supernodeID string) error {
	return c.setExpanded("expandSuperNodeInPlace", pipelineID, supernodeID, true)
}

func (c *Controller) CollapseSuperNodeInPlace(pipelineID, supernodeID string) error {
	return c.setExpanded("collapseSuperNodeInPlace", pipelineID, supernodeID, false)
}

// setExpanded toggles the in-place display of a supernode. Expanding an
// external supernode loads its pipeline first.
func (c *Controller) setExpanded(label, pipelineID, supernodeID string, expanded bool) error {
	pid, sn, err := c.supernode(pipelineID, supernodeID)
	if err != nil {
		return err
	}
	if sn.IsExpanded == expanded {
		return nil
	}
	var (
		cmds []command.Command
		load *externalLoad
	)
	if expanded && !c.store.HasPipeline(sn.SubPipelineID()) {
		if load, err = c.loadExternal(EditTypeExpandSuperNodeInPlace, pid, sn, true); err != nil {
			return err
		}
		cmds = append(cmds, load)
	}
	sn.IsExpanded = expanded
	cmds = append(cmds, &replaceNodes{store: c.store, pipelineID: pid, next: []*model.Node{sn}})
	return c.pushLoaded(label, load, cmds)
}

// DisplaySubPipelineForSupernode displays the first sub-pipeline of a
// supernode, loading it from the host if it is stored externally.
func (c *Controller) DisplaySubPipelineForSupernode(supernodeID, parentPipelineID string) error {
	pid, sn, err := c.supernode(parentPipelineID, supernodeID)
	if err != nil {
		return err
	}
	up, err := c.chain(pid)
	if err != nil {
		return err
	}
	next := append(up, crumbFor(sn, pid))

	if c.store.HasPipeline(sn.SubPipelineID()) {
		return c.navigate("displaySubPipeline", next)
	}
	load, err := c.loadExternal(EditTypeDisplaySubPipeline, pid, sn, true)
	if err != nil {
		return err
	}
	cmds := []command.Command{load, &setBreadcrumbs{ctrl: c, prev: c.crumbs.All(), next: next}}
	return c.pushLoaded("displaySubPipeline", load, cmds)
}

// DisplaySubPipeline displays a loaded pipeline. When it is already in the
// breadcrumbs the deeper entries are dropped.
func (c *Controller) DisplaySubPipeline(pipelineID string) error {
	next, err := c.chain(pipelineID)
	if err != nil {
		return err
	}
	return c.navigate("displaySubPipeline", next)
}

// DisplayPreviousPipeline goes up one level.
func (c *Controller) DisplayPreviousPipeline() error {
	if c.crumbs.Len() == 1 {
		return errors.Wrap(model.ErrState, "already at the root pipeline")
	}
	prev := c.crumbs.All()
	return c.navigate("displayPreviousPipeline", prev[:len(prev)-1])
}

// DisplaySubPipelineForBreadcrumbs replaces the breadcrumbs. The chain must
// start at the primary pipeline and every entry must be a loaded sub-pipeline
// of the supernode it names.
func (c *Controller) DisplaySubPipelineForBreadcrumbs(crumbs []model.Breadcrumb) error {
	if err := breadcrumb.Check(crumbs); err != nil {
		return err
	}
	if crumbs[0].PipelineID != c.store.PrimaryPipelineID() {
		return errors.Wrapf(model.ErrReference, "breadcrumbs start at %s, not at the primary pipeline", crumbs[0].PipelineID)
	}
	for _, b := range crumbs[1:] {
		if !c.store.HasPipeline(b.PipelineID) {
			return errors.Wrapf(model.ErrReference, "pipeline %s is not loaded", b.PipelineID)
		}
		sn, err := c.store.Node(b.SupernodeParentPipelineID, b.SupernodeID)
		if err != nil {
			return err
		}
		if !slices.Contains(sn.SubPipelineIDs, b.PipelineID) {
			return errors.Wrapf(model.ErrReference, "supernode %s does not own pipeline %s", b.SupernodeID, b.PipelineID)
		}
	}
	return c.navigate("displaySubPipelineForBreadcrumbs", crumbs)
}

func (c *Controller) navigate(label string, next []model.Breadcrumb) error {
	prev := c.crumbs.All()
	if slices.Equal(prev, next) {
		return nil
	}
	return c.push(command.NewMacro(label, &setBreadcrumbs{ctrl: c, prev: prev, next: next}))
}

// chain returns the breadcrumbs leading to a loaded pipeline, reusing the
// current ones where they match.
func (c *Controller) chain(pipelineID string) ([]model.Breadcrumb, error) {
	var walk func(id string, depth int) ([]model.Breadcrumb, error)
	walk = func(id string, depth int) ([]model.Breadcrumb, error) {
		if idx := c.crumbs.Index(id); idx >= 0 {
			return c.crumbs.All()[:idx+1], nil
		}
		if id == c.store.PrimaryPipelineID() {
			return []model.Breadcrumb{{PipelineID: id}}, nil
		}
		parent, err := c.store.ParentPipelineID(id)
		if err != nil {
			return nil, err
		}
		if parent == "" || depth > len(c.store.PipelineIDs()) {
			return nil, errors.Wrapf(model.ErrReference, "pipeline %s is not reachable from the primary pipeline", id)
		}
		sn, err := c.owner(parent, id)
		if err != nil {
			return nil, err
		}
		up, err := walk(parent, depth+1)
		if err != nil {
			return nil, err
		}
		return append(up, crumbFor(sn, parent)), nil
	}
	return walk(pipelineID, 0)
}

// owner returns the supernode of parentID whose sub-pipelines include id.
func (c *Controller) owner(parentID, id string) (*model.Node, error) {
	for _, ref := range c.store.SupernodesReferencing(id) {
		if ref.PipelineID == parentID {
			return c.store.Node(ref.PipelineID, ref.NodeID)
		}
	}
	return nil, errors.Wrapf(model.ErrReference, "no supernode of pipeline %s owns pipeline %s", parentID, id)
}

func crumbFor(sn *model.Node, parentID string) model.Breadcrumb {
	return model.Breadcrumb{
		PipelineID:                sn.SubPipelineID(),
		SupernodeID:               sn.ID,
		SupernodeParentPipelineID: parentID,
		ExternalURL:               sn.ExternalURL,
		Label:                     sn.Label,
	}
}

// askHost hands action to the host. Without a handler the action proceeds
// unchanged; a nil result from the handler cancels it.
func (c *Controller) askHost(action *EditAction) (*EditAction, error) {
	if c.beforeEdit == nil {
		return action, nil
	}
	res, err := c.beforeEdit(action)
	if err != nil {
		return nil, errors.Wrapf(err, "%s refused by host", action.EditType)
	}
	if res == nil {
		c.logger.Debug("edit cancelled by host", "edit_type", action.EditType, "supernode", action.SupernodeID)
	}
	return res, nil
}

// fetchExternal returns the pipeline flow stored at the supernode's external
// URL. The host is asked until an edit merging the flow is accepted, later
// calls use the cached copy.
func (c *Controller) fetchExternal(editType EditType, pipelineID string, sn *model.Node) (*model.Document, error) {
	url := sn.ExternalURL
	if doc, ok := c.fetched[url]; ok {
		c.logger.Debug("external pipeline flow cache hit", "url", url)
		return doc, nil
	}
	if c.beforeEdit == nil {
		return nil, errors.Wrapf(model.ErrExternalFetch, "no handler to load %s", url)
	}
	res, err := c.beforeEdit(&EditAction{
		EditType:                 editType,
		PipelineID:               pipelineID,
		SupernodeID:              sn.ID,
		ExternalURL:              url,
		ExternalPipelineFlowID:   sn.ExternalPipelineFlowID,
		ExternalPipelineFlowLoad: true,
	})
	if err != nil {
		return nil, errors.Wrapf(model.ErrExternalFetch, "unable to load %s: %v", url, err)
	}
	if res == nil || res.ExternalPipelineFlow == nil {
		return nil, errors.Wrapf(model.ErrExternalFetch, "host returned no pipeline flow for %s", url)
	}
	if res.ExternalPipelineFlow.Pipeline(sn.SubPipelineID()) == nil {
		return nil, errors.Wrapf(model.ErrExternalFetch, "pipeline flow %s has no pipeline %s", url, sn.SubPipelineID())
	}
	doc := res.ExternalPipelineFlow.Clone()
	c.logger.Debug("external pipeline flow loaded", "url", url, "pipelines", len(doc.Pipelines))
	return doc, nil
}

// loadExternal builds the command merging the external pipelines of sn into
// the store. With keepExternal unset the pipelines become local.
func (c *Controller) loadExternal(editType EditType, pipelineID string, sn *model.Node, keepExternal bool) (*externalLoad, error) {
	if !sn.IsExternal() {
		return nil, errors.Wrapf(model.ErrReference, "pipeline %s not found", sn.SubPipelineID())
	}
	doc, err := c.fetchExternal(editType, pipelineID, sn)
	if err != nil {
		return nil, err
	}
	url, flowID := "", ""
	if keepExternal {
		url, flowID = sn.ExternalURL, sn.ExternalPipelineFlowID
		if flowID == "" {
			flowID = doc.ID
		}
	}
	return &externalLoad{
		addPipelines: &addPipelines{
			store:     c.store,
			pipelines: c.fragmentPipelines(doc, sn, pipelineID, url, flowID),
			cause:     model.ErrExternalFetch,
		},
		url: sn.ExternalURL,
		doc: doc,
	}, nil
}

// externalLoad merges the pipelines of a fetched external flow.
type externalLoad struct {
	*addPipelines
	url string
	doc *model.Document
}

// pushLoaded pushes cmds as one edit and caches the flow fetched by load
// once the edit is accepted. A rejected flow is fetched again next time.
func (c *Controller) pushLoaded(label string, load *externalLoad, cmds []command.Command) error {
	if err := c.push(command.NewMacro(label, cmds...)); err != nil {
		if load != nil {
			c.logger.Debug("external pipeline flow rejected", "url", load.url, "error", err)
		}
		return err
	}
	if load != nil {
		c.fetched[load.url] = load.doc
	}
	return nil
}

// fragmentPipelines orders the pipelines of doc that are not loaded yet,
// parents first starting from the sub-pipeline of sn, and marks them.
func (c *Controller) fragmentPipelines(doc *model.Document, sn *model.Node, pipelineID, url, flowID string) []*model.Pipeline {
	parents := map[string]string{}
	for _, id := range sn.SubPipelineIDs {
		parents[id] = pipelineID
	}
	queue := append([]string(nil), sn.SubPipelineIDs...)
	var order []string
	visited := make(map[string]bool)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		p := doc.Pipeline(id)
		if p == nil || visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		for _, n := range p.Nodes {
			for _, sub := range n.SubPipelineIDs {
				if _, ok := parents[sub]; !ok {
					parents[sub] = id
				}
				queue = append(queue, sub)
			}
		}
	}
	for _, p := range doc.Pipelines {
		if !visited[p.ID] {
			visited[p.ID] = true
			order = append(order, p.ID)
		}
	}

	var res []*model.Pipeline
	for _, id := range order {
		if c.store.HasPipeline(id) {
			continue
		}
		p := doc.Pipeline(id).Clone()
		p.ParentPipelineID = parents[id]
		p.ExternalURL = url
		p.ExternalPipelineFlowID = flowID
		res = append(res, p)
	}
	return res
}

// ConvertSuperNodeLocalToExternal hands the sub-pipelines of a supernode to
// the host, which supplies the URL and flow id they are stored under.
func (c *Controller) ConvertSuperNodeLocalToExternal(pipelineID, supernodeID string) error {
	pid, sn, err := c.supernode(pipelineID, supernodeID)
	if err != nil {
		return err
	}
	if sn.IsExternal() {
		return errors.Wrapf(model.ErrState, "supernode %s is already external", sn.ID)
	}
	action, err := c.askHost(&EditAction{
		EditType:    EditTypeConvertSuperNodeLocalToExternal,
		PipelineID:  pid,
		SupernodeID: sn.ID,
	})
	if err != nil || action == nil {
		return err
	}
	if action.ExternalURL == "" {
		return errors.Wrapf(model.ErrState, "host provided no external url for supernode %s", sn.ID)
	}

	var cmds []command.Command
	for _, id := range c.ownedPipelines(sn, "") {
		cmds = append(cmds, &setPipelineExternal{
			store: c.store, pipelineID: id, url: action.ExternalURL, flowID: action.ExternalPipelineFlowID,
		})
	}
	sn.ExternalURL = action.ExternalURL
	sn.ExternalPipelineFlowID = action.ExternalPipelineFlowID
	cmds = append(cmds, &replaceNodes{store: c.store, pipelineID: pid, next: []*model.Node{sn}})
	if cmd := c.crumbsWithURL(pid, sn.ID, sn.ExternalURL); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return c.push(command.NewMacro("convertSuperNodeLocalToExternal", cmds...))
}

// ConvertSuperNodeExternalToLocal brings the external pipelines of a
// supernode back into the document, loading them first if needed.
func (c *Controller) ConvertSuperNodeExternalToLocal(pipelineID, supernodeID string) error {
	pid, sn, err := c.supernode(pipelineID, supernodeID)
	if err != nil {
		return err
	}
	if !sn.IsExternal() {
		return errors.Wrapf(model.ErrState, "supernode %s is not external", sn.ID)
	}
	action, err := c.askHost(&EditAction{
		EditType:               EditTypeConvertSuperNodeExternalToLocal,
		PipelineID:             pid,
		SupernodeID:            sn.ID,
		ExternalURL:            sn.ExternalURL,
		ExternalPipelineFlowID: sn.ExternalPipelineFlowID,
	})
	if err != nil || action == nil {
		return err
	}

	var (
		cmds []command.Command
		load *externalLoad
	)
	if !c.store.HasPipeline(sn.SubPipelineID()) {
		if load, err = c.loadExternal(EditTypeLoadPipelineFlow, pid, sn, false); err != nil {
			return err
		}
		cmds = append(cmds, load)
	} else {
		for _, id := range c.ownedPipelines(sn, sn.ExternalURL) {
			cmds = append(cmds, &setPipelineExternal{store: c.store, pipelineID: id})
		}
	}
	sn.ExternalURL = ""
	sn.ExternalPipelineFlowID = ""
	cmds = append(cmds, &replaceNodes{store: c.store, pipelineID: pid, next: []*model.Node{sn}})
	if cmd := c.crumbsWithURL(pid, sn.ID, ""); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return c.pushLoaded("convertSuperNodeExternalToLocal", load, cmds)
}

// ownedPipelines returns the loaded sub-pipelines of sn and their
// descendants stored at url, an empty url meaning local.
func (c *Controller) ownedPipelines(sn *model.Node, url string) []string {
	var res []string
	seen := make(map[string]bool)
	for _, sub := range sn.SubPipelineIDs {
		for _, id := range append([]string{sub}, c.store.Descendants(sub)...) {
			if seen[id] || !c.store.HasPipeline(id) {
				continue
			}
			seen[id] = true
			p, err := c.store.Pipeline(id)
			if err != nil || p.ExternalURL != url {
				continue
			}
			res = append(res, id)
		}
	}
	return res
}

// crumbsWithURL updates the external URL shown by the breadcrumb of a supernode.
func (c *Controller) crumbsWithURL(pipelineID, supernodeID, url string) command.Command {
	prev := c.crumbs.All()
	next := c.crumbs.All()
	changed := false
	for i := range next {
		if next[i].SupernodeID == supernodeID && next[i].SupernodeParentPipelineID == pipelineID {
			next[i].ExternalURL = url
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return &setBreadcrumbs{ctrl: c, prev: prev, next: next}
}
