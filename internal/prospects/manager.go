package prospects

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prospecta/prospecta-platform/internal/ai"
	"github.com/prospecta/prospecta-platform/internal/observability/metrics"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// braziliansAbroadSuffix narrows a search to Brazilian-owned businesses
// when the user prospects outside Brazil.
const braziliansAbroadSuffix = " (foco em negócios e empreendedores brasileiros na localização especificada)"

// SearchRequest is one discovery run.
type SearchRequest struct {
	Query            string   `json:"query"`
	Location         string   `json:"location"`
	Sources          []string `json:"sources"`
	BraziliansAbroad bool     `json:"braziliansAbroad"`
}

func (r SearchRequest) Validate() error {
	if len(r.Sources) == 0 {
		return ErrNoSources
	}
	for _, s := range r.Sources {
		if s != ai.SourceGoogle && s != ai.SourceInstagram {
			return fmt.Errorf("%w: %s", ErrUnknownSource, s)
		}
	}
	if strings.TrimSpace(r.Query) == "" {
		return ErrMissingQuery
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrMissingLocation
	}
	return nil
}

// DiscoverOutcome reports one discovery run: what was added, what the
// model cited, and the toast message for the user.
type DiscoverOutcome struct {
	Added      []Prospect           `json:"added"`
	Sources    []ai.GroundingSource `json:"sources"`
	Message    string               `json:"message"`
	TotalFound int                  `json:"totalFound"`
}

type userState struct {
	loaded      bool
	prospects   []*Prospect
	lastFoundID map[string]bool
	discovering bool
}

// ManagerConfig wires the funnel manager's collaborators.
type ManagerConfig struct {
	Repo    Repository
	AI      *ai.Service
	Logger  *logging.Logger
	Metrics *metrics.AIMetrics
	// SuggestionTimeout bounds the fire-and-forget next-action call
	// triggered by a status change.
	SuggestionTimeout time.Duration
	// DiscoveryTimeout bounds one AI discovery run.
	DiscoveryTimeout time.Duration
}

// Manager owns the authoritative in-memory prospect collection per user
// and keeps remote persistence in sync. Edits apply locally first; a
// failed remote write leaves the optimistic value in place and is
// surfaced to the caller. Deletes go remote-first.
type Manager struct {
	repo              Repository
	ai                *ai.Service
	logger            *logging.Logger
	metrics           *metrics.AIMetrics
	suggestionTimeout time.Duration
	discoveryTimeout  time.Duration

	mu    sync.Mutex
	users map[string]*userState
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Repo == nil {
		panic("prospects: repository required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	suggestionTimeout := cfg.SuggestionTimeout
	if suggestionTimeout <= 0 {
		suggestionTimeout = 45 * time.Second
	}
	discoveryTimeout := cfg.DiscoveryTimeout
	if discoveryTimeout <= 0 {
		discoveryTimeout = 3 * time.Minute
	}
	return &Manager{
		repo:              cfg.Repo,
		ai:                cfg.AI,
		logger:            logger.Named("funnel"),
		metrics:           cfg.Metrics,
		suggestionTimeout: suggestionTimeout,
		discoveryTimeout:  discoveryTimeout,
		users:             make(map[string]*userState),
	}
}

func (m *Manager) state(userID string) *userState {
	if s, ok := m.users[userID]; ok {
		return s
	}
	s := &userState{lastFoundID: make(map[string]bool)}
	m.users[userID] = s
	return s
}

// ensureLoaded lazily hydrates a user's collection from the repository.
func (m *Manager) ensureLoaded(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.state(userID).loaded {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	list, err := m.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state(userID)
	if s.loaded {
		return nil
	}
	s.prospects = make([]*Prospect, 0, len(list))
	for i := range list {
		p := list[i]
		s.prospects = append(s.prospects, &p)
	}
	s.loaded = true
	return nil
}

// List returns the user's prospects, optionally filtered by a
// case-insensitive name substring.
func (m *Manager) List(ctx context.Context, userID, nameFilter string) ([]Prospect, error) {
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	filter := strings.ToLower(nameFilter)
	list := make([]Prospect, 0, len(m.state(userID).prospects))
	for _, p := range m.state(userID).prospects {
		if filter != "" && !strings.Contains(strings.ToLower(p.Name), filter) {
			continue
		}
		list = append(list, *p)
	}
	return list, nil
}

// Board partitions the (optionally name-filtered) collection into the
// four funnel columns. Every status key is always present.
func (m *Manager) Board(ctx context.Context, userID, nameFilter string) (map[Status][]Prospect, error) {
	list, err := m.List(ctx, userID, nameFilter)
	if err != nil {
		return nil, err
	}

	board := make(map[Status][]Prospect, len(AllStatuses))
	for _, status := range AllStatuses {
		board[status] = []Prospect{}
	}
	for _, p := range list {
		board[p.Status] = append(board[p.Status], p)
	}
	return board, nil
}

// LastFound returns the results of the user's most recent search that
// are still in the base.
func (m *Manager) LastFound(ctx context.Context, userID string) ([]Prospect, error) {
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state(userID)
	list := make([]Prospect, 0, len(s.lastFoundID))
	for _, p := range s.prospects {
		if s.lastFoundID[p.ID] {
			list = append(list, *p)
		}
	}
	return list, nil
}

// Discover runs one AI search, drops candidates already in the user's
// base, persists the rest, and appends them to the collection. At most
// one discovery per user runs at a time. A canceled context aborts
// before any state mutation.
func (m *Manager) Discover(ctx context.Context, userID string, creds ai.Credentials, req SearchRequest) (DiscoverOutcome, error) {
	if err := req.Validate(); err != nil {
		return DiscoverOutcome{}, err
	}
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return DiscoverOutcome{}, err
	}

	m.mu.Lock()
	s := m.state(userID)
	if s.discovering {
		m.mu.Unlock()
		return DiscoverOutcome{}, ErrDiscoveryInFlight
	}
	s.discovering = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		s.discovering = false
		m.mu.Unlock()
	}()

	query := req.Query
	if req.BraziliansAbroad {
		query += braziliansAbroadSuffix
	}

	searchCtx, cancel := context.WithTimeout(ctx, m.discoveryTimeout)
	defer cancel()
	result, err := m.ai.Discover(searchCtx, creds, query, req.Location, req.Sources)
	if err != nil {
		return DiscoverOutcome{}, err
	}
	if ctx.Err() != nil {
		return DiscoverOutcome{}, ctx.Err()
	}

	m.mu.Lock()
	existing := make(map[string]bool, len(s.prospects))
	for _, p := range s.prospects {
		existing[p.IdentityKey()] = true
	}
	m.mu.Unlock()

	fresh := make([]Prospect, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		if existing[identityKey(c.Name, c.Website)] {
			continue
		}
		existing[identityKey(c.Name, c.Website)] = true
		fresh = append(fresh, FromCandidate(c, userID, req.Sources))
	}
	m.metrics.ObserveDiscovered("duplicate", len(result.Candidates)-len(fresh))

	outcome := DiscoverOutcome{Sources: result.Sources, TotalFound: len(result.Candidates)}
	if len(fresh) == 0 {
		if len(result.Candidates) > 0 {
			outcome.Message = "Todos os prospects encontrados já estão na sua base."
		} else {
			outcome.Message = "Nenhum prospect novo encontrado. Tente refinar sua busca."
		}
		outcome.Added = []Prospect{}
		m.mu.Lock()
		s.lastFoundID = make(map[string]bool)
		m.mu.Unlock()
		return outcome, nil
	}

	inserted, err := m.repo.InsertBatch(ctx, userID, fresh)
	if err != nil {
		return DiscoverOutcome{}, fmt.Errorf("prospects: persisting discovery results: %w", err)
	}
	if ctx.Err() != nil {
		return DiscoverOutcome{}, ctx.Err()
	}

	m.mu.Lock()
	s.lastFoundID = make(map[string]bool, len(inserted))
	for i := range inserted {
		p := inserted[i]
		s.prospects = append(s.prospects, &p)
		s.lastFoundID[p.ID] = true
	}
	m.mu.Unlock()

	m.metrics.ObserveDiscovered("inserted", len(inserted))
	outcome.Added = inserted
	outcome.Message = fmt.Sprintf("%d novo(s) prospect(s) adicionado(s) à sua base.", len(inserted))
	return outcome, nil
}

// Update applies a partial edit optimistically, then syncs it to the
// repository. On a remote failure the optimistic value stays in place
// and is returned alongside the error so callers can warn the user.
func (m *Manager) Update(ctx context.Context, userID, id string, update Update) (*Prospect, error) {
	if update.Empty() {
		return nil, ErrEmptyUpdate
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	local := m.find(userID, id)
	if local == nil {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	update.Apply(local)
	local.UpdatedAt = time.Now().UTC()
	optimistic := *local
	m.mu.Unlock()

	stored, err := m.repo.Update(ctx, userID, id, update)
	if err != nil {
		m.logger.Warn("remote update failed, keeping optimistic state",
			"prospect_id", id, "error", err)
		return &optimistic, fmt.Errorf("prospects: sync failed: %w", err)
	}

	m.mu.Lock()
	if local := m.find(userID, id); local != nil {
		local.CreatedAt = stored.CreatedAt
		local.UpdatedAt = stored.UpdatedAt
	}
	m.mu.Unlock()
	return stored, nil
}

// Delete removes a prospect remote-first; local state is only touched
// after the repository confirms.
func (m *Manager) Delete(ctx context.Context, userID, id string) error {
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return err
	}

	m.mu.Lock()
	if m.find(userID, id) == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.mu.Unlock()

	if err := m.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	m.mu.Lock()
	s := m.state(userID)
	for i, p := range s.prospects {
		if p.ID == id {
			s.prospects = append(s.prospects[:i], s.prospects[i+1:]...)
			break
		}
	}
	delete(s.lastFoundID, id)
	m.mu.Unlock()
	return nil
}

// ClearAll wipes the user's entire base, remote-first.
func (m *Manager) ClearAll(ctx context.Context, userID string) error {
	if err := m.repo.DeleteAllByUser(ctx, userID); err != nil {
		return err
	}

	m.mu.Lock()
	s := m.state(userID)
	s.prospects = nil
	s.lastFoundID = make(map[string]bool)
	s.loaded = true
	m.mu.Unlock()
	return nil
}

// ChangeStatus moves a prospect to a new funnel stage. Equal statuses
// are a no-op. A real change additionally asks the AI for the next best
// action in the background; the status change never waits on it.
func (m *Manager) ChangeStatus(ctx context.Context, userID, id string, newStatus Status, creds ai.Credentials) (*Prospect, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	local := m.find(userID, id)
	if local == nil {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if local.Status == newStatus {
		copied := *local
		m.mu.Unlock()
		return &copied, nil
	}
	m.mu.Unlock()

	status := newStatus
	updated, err := m.Update(ctx, userID, id, Update{Status: &status})
	if updated == nil {
		return nil, err
	}

	m.resuggestNextAction(userID, *updated, creds)
	return updated, err
}

// MarkContacted promotes a prospect from new to contacted when the user
// opens an outreach channel. Any other stage is left untouched.
func (m *Manager) MarkContacted(ctx context.Context, userID, id string) (*Prospect, error) {
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	local := m.find(userID, id)
	if local == nil {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if local.Status != StatusNew {
		copied := *local
		m.mu.Unlock()
		return &copied, nil
	}
	m.mu.Unlock()

	status := StatusContacted
	updated, err := m.Update(ctx, userID, id, Update{Status: &status})
	if updated == nil {
		return nil, err
	}
	return updated, err
}

// SuggestNextAction asks the AI for the next best move and stores it on
// the prospect.
func (m *Manager) SuggestNextAction(ctx context.Context, userID, id string, creds ai.Credentials) (string, error) {
	if err := m.ensureLoaded(ctx, userID); err != nil {
		return "", err
	}

	m.mu.Lock()
	local := m.find(userID, id)
	if local == nil {
		m.mu.Unlock()
		return "", ErrNotFound
	}
	snapshot := *local
	m.mu.Unlock()

	suggestion, err := m.ai.SuggestNextAction(ctx, creds, snapshot.Context())
	if err != nil {
		return "", err
	}

	if _, err := m.Update(ctx, userID, id, Update{NextRecommendedAction: &suggestion}); err != nil {
		m.logger.Warn("suggestion stored locally only", "prospect_id", id, "error", err)
	}
	return suggestion, nil
}

// resuggestNextAction refreshes the next-action coaching after a status
// change. Fire and forget: failures are logged, never surfaced.
func (m *Manager) resuggestNextAction(userID string, p Prospect, creds ai.Credentials) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.suggestionTimeout)
		defer cancel()

		suggestion, err := m.ai.SuggestNextAction(ctx, creds, p.Context())
		if err != nil {
			m.logger.Warn("next-action re-suggestion failed",
				"prospect_id", p.ID, "status", p.Status, "error", err)
			return
		}
		if _, err := m.Update(ctx, userID, p.ID, Update{NextRecommendedAction: &suggestion}); err != nil {
			m.logger.Warn("next-action re-suggestion not persisted",
				"prospect_id", p.ID, "error", err)
		}
	}()
}

// find returns the live pointer for a prospect. Callers must hold mu.
func (m *Manager) find(userID, id string) *Prospect {
	for _, p := range m.state(userID).prospects {
		if p.ID == id {
			return p
		}
	}
	return nil
}
