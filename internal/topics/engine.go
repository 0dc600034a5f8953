package topics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/reviewlens/topicforge/internal/clustering"
	"github.com/reviewlens/topicforge/internal/embedding"
	"github.com/reviewlens/topicforge/internal/naming"
	"github.com/reviewlens/topicforge/pkg/models"
)

// Build parameter bounds.
const (
	DefaultLimit      = 500
	MinLimit          = 1
	MaxLimit          = 2000
	DefaultMinSize    = 3
	MinMinSize        = 2
	defaultNamingFans = 4
)

// ErrMissingLocation flags an empty location id. The HTTP layer maps it to a
// 400 response.
var ErrMissingLocation = errors.New("locationId is required")

// ConceptStore is the concept persistence surface the engine needs.
type ConceptStore interface {
	// FetchUnassigned returns up to limit pending concepts for the location.
	FetchUnassigned(ctx context.Context, locationID string, limit int) ([]*models.Concept, error)

	// CountByLocation returns the all-time concept count for the location,
	// assigned or not.
	CountByLocation(ctx context.Context, locationID string) (int64, error)

	// AssignTopic links the given concepts to a topic, setting topic_id and
	// assigned_at together.
	AssignTopic(ctx context.Context, conceptIDs []string, topicID string, assignedAt time.Time) error
}

// TopicStore is the topic persistence surface the engine needs.
type TopicStore interface {
	// ListByLocation returns every persisted topic for the location,
	// including stored embeddings.
	ListByLocation(ctx context.Context, locationID string) ([]*models.Topic, error)

	// Create inserts a new topic row.
	Create(ctx context.Context, topic *models.Topic) error
}

// Options tunes the engine thresholds. Zero values take the defaults.
type Options struct {
	JaccardThreshold   float64
	HistMergeThreshold float64
	NamingConcurrency  int
}

func (o Options) withDefaults() Options {
	if o.JaccardThreshold <= 0 {
		o.JaccardThreshold = DefaultJaccardThreshold
	}
	if o.HistMergeThreshold <= 0 {
		o.HistMergeThreshold = DefaultHistMergeThreshold
	}
	if o.NamingConcurrency <= 0 {
		o.NamingConcurrency = defaultNamingFans
	}
	return o
}

// Engine orchestrates one topic build run for a location.
type Engine struct {
	concepts  ConceptStore
	topics    TopicStore
	clusterer clustering.Clusterer
	namer     naming.Namer
	embedder  embedding.Embedder
	opts      Options

	now func() time.Time
}

// NewEngine wires the engine with its collaborators and stores.
func NewEngine(concepts ConceptStore, topics TopicStore, clusterer clustering.Clusterer,
	namer naming.Namer, embedder embedding.Embedder, opts Options) *Engine {
	return &Engine{
		concepts:  concepts,
		topics:    topics,
		clusterer: clusterer,
		namer:     namer,
		embedder:  embedder,
		opts:      opts.withDefaults(),
		now:       time.Now,
	}
}

// BuildParams are the inputs for one run.
type BuildParams struct {
	LocationID   string
	CompanyID    string
	Limit        int
	MinTopicSize int
	DryRun       bool
	Business     naming.BusinessContext
}

func (p BuildParams) normalized() BuildParams {
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < MinLimit:
		p.Limit = MinLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	switch {
	case p.MinTopicSize == 0:
		p.MinTopicSize = DefaultMinSize
	case p.MinTopicSize < MinMinSize:
		p.MinTopicSize = MinMinSize
	}
	return p
}

// TopicPreview is the per-candidate summary returned by both live and dry
// runs.
type TopicPreview struct {
	Name      string   `json:"name"`
	Size      int      `json:"size"`
	AvgRating *float64 `json:"avgRating"`
}

// Meta reports the capacity figures and threshold that governed the run.
type Meta struct {
	TotalConceptsForLocation int64   `json:"totalConceptsForLocation"`
	ExistingTopics           int     `json:"existingTopics"`
	MaxTopics                int     `json:"maxTopics"`
	AvailableSlots           int     `json:"availableSlots"`
	HistMergeThreshold       float64 `json:"histMergeThreshold"`
}

// BuildResult is the outcome of one run. On an empty result Message explains
// why and Topics is empty.
type BuildResult struct {
	LocationID         string
	CompanyID          string
	Taken              int
	DryRun             bool
	CreatedTopics      int
	AssignedConcepts   int
	MergedIntoExisting int
	Message            string
	Topics             []TopicPreview
	Meta               Meta
}

// Build runs one batch: fetch pending concepts, cluster, name, consolidate,
// reconcile against persisted topics within the capacity budget, and commit
// assignments. Writes happen only after clustering, naming, and embedding
// have all succeeded, and are skipped entirely in dry-run mode.
func (e *Engine) Build(ctx context.Context, params BuildParams) (*BuildResult, error) {
	if params.LocationID == "" {
		return nil, ErrMissingLocation
	}
	p := params.normalized()
	started := e.now()

	pending, err := e.concepts.FetchUnassigned(ctx, p.LocationID, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unassigned concepts: %w", err)
	}

	totalConcepts, err := e.concepts.CountByLocation(ctx, p.LocationID)
	if err != nil {
		return nil, fmt.Errorf("count concepts: %w", err)
	}

	existing, err := e.topics.ListByLocation(ctx, p.LocationID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	capacity := PlanCapacity(len(existing), totalConcepts)
	result := &BuildResult{
		LocationID: p.LocationID,
		CompanyID:  p.CompanyID,
		Taken:      len(pending),
		DryRun:     p.DryRun,
		Topics:     []TopicPreview{},
		Meta: Meta{
			TotalConceptsForLocation: totalConcepts,
			ExistingTopics:           len(existing),
			MaxTopics:                capacity.MaxTopics,
			AvailableSlots:           capacity.AvailableSlots,
			HistMergeThreshold:       e.opts.HistMergeThreshold,
		},
	}

	if len(pending) == 0 {
		result.Message = "no pending concepts for location"
		return result, nil
	}
	if len(pending) < p.MinTopicSize {
		result.Message = fmt.Sprintf("need at least %d pending concepts, have %d", p.MinTopicSize, len(pending))
		return result, nil
	}

	groups, err := e.clusterer.Cluster(ctx, adaptConcepts(pending))
	if err != nil {
		return nil, fmt.Errorf("cluster concepts: %w", err)
	}
	if len(groups) == 0 {
		result.Message = "clustering produced no clusters"
		return result, nil
	}

	candidates, err := e.nameClusters(ctx, groups, pending, p.Business)
	if err != nil {
		return nil, err
	}

	merged := MergeBatch(candidates, e.opts.JaccardThreshold)

	// Largest, best-evidenced clusters get first access to merge matching
	// and the slot budget. Stable: equal sizes keep batch order.
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Size() > merged[j].Size() })

	// One batched embedding call for the whole run.
	signatures := make([]string, len(merged))
	for i, c := range merged {
		signatures[i] = c.Signature
	}
	vectors, err := e.embedder.EmbedBatch(ctx, signatures)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	for i := range merged {
		merged[i].Embedding = vectors[i]
	}

	pool := NewTopicPool(poolFromTopics(existing))
	if err := e.allocate(ctx, p, merged, pool, capacity.AvailableSlots, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("locationId", p.LocationID).
		Bool("dryRun", p.DryRun).
		Int("taken", result.Taken).
		Int("createdTopics", result.CreatedTopics).
		Int("mergedIntoExisting", result.MergedIntoExisting).
		Int("assignedConcepts", result.AssignedConcepts).
		Dur("elapsed", e.now().Sub(started)).
		Msg("Topic build complete")

	return result, nil
}

// nameClusters computes per-cluster stats and fans out naming requests with
// a bounded concurrency. Any naming failure aborts the run.
func (e *Engine) nameClusters(ctx context.Context, groups []clustering.Group,
	pending []*models.Concept, biz naming.BusinessContext) ([]*Candidate, error) {

	byID := make(map[string]*models.Concept, len(pending))
	for _, c := range pending {
		byID[c.ID] = c
	}

	previews := make([][]string, len(groups))
	ratings := make([]*float64, len(groups))
	for i, grp := range groups {
		previews[i] = groupPreviews(grp, byID)
		ratings[i] = groupAvgRating(grp, byID)
	}

	names := make([]string, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.NamingConcurrency)
	for i := range groups {
		g.Go(func() error {
			label, err := e.namer.Name(gctx, previews[i], biz)
			if err != nil {
				return fmt.Errorf("name cluster %d: %w", i, err)
			}
			names[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]*Candidate, len(groups))
	for i, grp := range groups {
		candidates[i] = NewCandidate(names[i], grp.ConceptIDs, ratings[i], previews[i])
	}
	return candidates, nil
}

// allocate walks the candidates in descending-size order and decides, for
// each, merge vs create vs skip. The pool grows as topics are created so
// later candidates can merge into topics this run just made.
func (e *Engine) allocate(ctx context.Context, p BuildParams, candidates []*Candidate,
	pool *TopicPool, slots int, result *BuildResult) error {

	now := e.now()

	for _, cand := range candidates {
		result.Topics = append(result.Topics, TopicPreview{
			Name:      cand.Name,
			Size:      cand.Size(),
			AvgRating: cand.AvgRating,
		})

		best, score := pool.BestMatch(cand.Embedding)
		if score >= e.opts.HistMergeThreshold {
			// Historical merge: redirect the candidate's concepts to the
			// surviving topic. Consumes no slot.
			if !p.DryRun {
				if err := e.concepts.AssignTopic(ctx, cand.IDs(), best.ID, now); err != nil {
					return fmt.Errorf("assign concepts to topic %q: %w", best.Label, err)
				}
			}
			result.MergedIntoExisting++
			result.AssignedConcepts += cand.Size()
			log.Debug().
				Str("candidate", cand.Name).
				Str("topic", best.Label).
				Float64("score", score).
				Msg("Candidate merged into existing topic")
			continue
		}

		if slots == 0 {
			// Concepts stay unassigned, eligible for a future run.
			log.Debug().Str("candidate", cand.Name).Msg("No slots left, candidate skipped")
			continue
		}

		topic := &models.Topic{
			ID:           uuid.NewString(),
			LocationID:   p.LocationID,
			Label:        cand.Name,
			Model:        e.embedder.ModelName(),
			ConceptCount: cand.Size(),
			AvgRating:    cand.AvgRating,
			IsStable:     cand.Size() >= p.MinTopicSize,
			Embedding:    cand.Embedding,
			CreatedAt:    now,
		}
		if !p.DryRun {
			if err := e.topics.Create(ctx, topic); err != nil {
				return fmt.Errorf("create topic %q: %w", topic.Label, err)
			}
			if err := e.concepts.AssignTopic(ctx, cand.IDs(), topic.ID, now); err != nil {
				return fmt.Errorf("assign concepts to topic %q: %w", topic.Label, err)
			}
		}
		slots--
		result.CreatedTopics++
		result.AssignedConcepts += cand.Size()
		pool.Add(PoolEntry{ID: topic.ID, Label: topic.Label, Embedding: cand.Embedding})
	}

	return nil
}

// adaptConcepts converts pending concepts to the clusterer's input shape.
func adaptConcepts(pending []*models.Concept) []clustering.Item {
	items := make([]clustering.Item, len(pending))
	for i, c := range pending {
		items[i] = clustering.Item{
			ID:       c.ID,
			Summary:  c.Structured.Summary,
			Entity:   c.Structured.Entity,
			Aspect:   c.Structured.Aspect,
			Category: c.Structured.Category,
			Judgment: string(c.Structured.Judgment),
		}
	}
	return items
}

// groupPreviews returns the cluster's example summaries, falling back to
// member summaries when the clusterer supplied none.
func groupPreviews(grp clustering.Group, byID map[string]*models.Concept) []string {
	if len(grp.PreviewSummaries) > 0 {
		if len(grp.PreviewSummaries) > MaxSignatureSummaries {
			return grp.PreviewSummaries[:MaxSignatureSummaries]
		}
		return grp.PreviewSummaries
	}

	previews := make([]string, 0, MaxSignatureSummaries)
	for _, id := range grp.ConceptIDs {
		if len(previews) == MaxSignatureSummaries {
			break
		}
		if c, ok := byID[id]; ok && c.Structured.Summary != "" {
			previews = append(previews, c.Structured.Summary)
		}
	}
	return previews
}

// groupAvgRating averages the ratings present on the cluster's members; nil
// when none carries a rating.
func groupAvgRating(grp clustering.Group, byID map[string]*models.Concept) *float64 {
	var sum float64
	var n int
	for _, id := range grp.ConceptIDs {
		c, ok := byID[id]
		if !ok {
			continue
		}
		if r := models.CleanRating(c.Rating); r != nil {
			sum += *r
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// poolFromTopics seeds historical merge targets from persisted topics.
func poolFromTopics(existing []*models.Topic) []PoolEntry {
	entries := make([]PoolEntry, len(existing))
	for i, t := range existing {
		entries[i] = PoolEntry{ID: t.ID, Label: t.Label, Embedding: t.Embedding}
	}
	return entries
}
