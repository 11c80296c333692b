// internal/core/services/count.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// Sentinel errors the handlers translate to HTTP statuses.
var (
	ErrSessionNotFound    = errors.New("count session not found")
	ErrProductNotFound    = errors.New("product not found in session")
	ErrAttemptNotFound    = errors.New("counting attempt not found")
	ErrAttemptActive      = errors.New("another attempt is active for this product")
	ErrSubmissionInFlight = errors.New("a submission for this product is still outstanding")
	ErrInvalidState       = errors.New("operation not valid in current attempt state")
	ErrInvalidObjectType  = errors.New("unsupported object type")
	ErrEmptyImage         = errors.New("image payload is empty")
	ErrNegativeQuantity   = errors.New("counted quantity cannot be negative")
)

const (
	itemsCacheTTL = 5 * time.Minute

	// terminalAttemptTTL is how long a confirmed or failed attempt stays
	// queryable before sweepTerminal evicts it.
	terminalAttemptTTL = 10 * time.Minute
)

// CountService drives the count reconciliation workflow: it owns the open
// sessions, the per-product attempt state machines, and the sequential
// submission of confirmed quantities to the ERP.
type CountService struct {
	vision   ports.DetectionClient
	erp      ports.CountSubmitter
	lister   ports.ProductLister
	journal  ports.CountJournal
	cache    ports.CacheRepository
	archiver ports.EvidenceArchiver
	logger   *slog.Logger
	tempDir  string

	// terminalTTL bounds how long finished attempts are retained.
	terminalTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*countSession
	attempts map[uuid.UUID]*attempt
}

// Statically assert that *CountService implements the CountService port.
var _ ports.CountService = (*CountService)(nil)

// countSession holds the in-memory state of one open count session. All
// mutation goes through mu: the inventory id has a single writer (the submit
// success path) and many readers.
type countSession struct {
	mu         sync.Mutex
	session    domain.CountSession
	items      map[string]*domain.CountItem
	order      []string
	active     map[string]uuid.UUID
	submitting map[string]bool
}

// attempt is one reconciliation attempt for one product. Running add/remove
// counters keep recomputation O(1); the result always equals the closed-form
// formula in domain.FinalCount.
type attempt struct {
	id            uuid.UUID
	sessionKey    string
	productID     string
	objectType    domain.ObjectType
	state         ports.AttemptState
	result        *domain.DetectionResult
	adjustments   []domain.Adjustment
	adds          int
	removes       int
	variance      *decimal.Decimal
	failure       domain.Kind
	imagePath     string
	annotatedPath string
	doneAt        time.Time // set under CountService.mu when the attempt reaches a terminal state
}

// NewCountService creates the workflow service. archiver may be nil when
// evidence archiving is disabled.
func NewCountService(
	vision ports.DetectionClient,
	erp ports.CountSubmitter,
	lister ports.ProductLister,
	journal ports.CountJournal,
	cache ports.CacheRepository,
	archiver ports.EvidenceArchiver,
	tempDir string,
	logger *slog.Logger,
) *CountService {
	return &CountService{
		vision:   vision,
		erp:      erp,
		lister:   lister,
		journal:  journal,
		cache:    cache,
		archiver: archiver,
		tempDir:  tempDir,
		logger:   logger.With(slog.String("service", "count")),

		terminalTTL: terminalAttemptTTL,

		sessions: make(map[string]*countSession),
		attempts: make(map[uuid.UUID]*attempt),
	}
}

// OpenSession registers a session and loads its product list from the ERP.
// The list is cached briefly so re-opening a session (app restart, second
// device) does not refetch it, and a previously adopted inventory id is
// restored from the cache snapshot.
func (s *CountService) OpenSession(ctx context.Context, session domain.CountSession) (*ports.SessionState, error) {
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	s.sweepTerminal()

	key := session.Key()

	// Resume a server-issued inventory id from an earlier run.
	var adopted string
	if err := s.cache.Get(ctx, inventoryIDCacheKey(key), &adopted); err == nil && adopted != "" {
		session.InventoryID = adopted
	}

	var items []domain.CountItem
	err := s.cache.GetOrSet(ctx, itemsCacheKey(key), &items, func() (interface{}, error) {
		fetched, err := s.lister.FetchItems(ctx, session)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	}, itemsCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to load count items: %w", err)
	}

	cs := &countSession{
		session:    session,
		items:      make(map[string]*domain.CountItem, len(items)),
		order:      make([]string, 0, len(items)),
		active:     make(map[string]uuid.UUID),
		submitting: make(map[string]bool),
	}
	for i := range items {
		item := items[i]
		cs.items[item.ProductID] = &item
		cs.order = append(cs.order, item.ProductID)
	}

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		// Keep live attempt bookkeeping, refresh the item snapshot only for
		// products that are not mid-attempt. A persisted counted quantity is
		// authoritative and must never be erased by a snapshot that predates
		// the submission.
		existing.mu.Lock()
		for pid, item := range cs.items {
			if _, busy := existing.active[pid]; busy {
				continue
			}
			if prev, ok := existing.items[pid]; ok && prev.Counted() && !item.Counted() {
				continue
			}
			existing.items[pid] = item
		}
		existing.order = cs.order
		existing.mu.Unlock()
		cs = existing
	} else {
		s.sessions[key] = cs
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "count session opened",
		slog.String("session", key),
		slog.String("inventory_id", session.InventoryID),
		slog.Int("items", len(items)))

	return s.sessionState(cs), nil
}

// Items returns the product list of an open session.
func (s *CountService) Items(ctx context.Context, sessionKey string) ([]*domain.CountItem, error) {
	cs, err := s.session(sessionKey)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.itemSnapshot(), nil
}

// BeginAttempt starts a counting attempt for one product. The attempt enters
// Capturing; the photograph arrives later through Detect.
func (s *CountService) BeginAttempt(ctx context.Context, sessionKey, productID string, objectType domain.ObjectType) (*ports.AttemptView, error) {
	if !domain.ValidObjectType(objectType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidObjectType, objectType)
	}
	s.sweepTerminal()

	cs, err := s.session(sessionKey)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.items[productID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if id, busy := cs.active[productID]; busy {
		return nil, fmt.Errorf("%w (attempt %s)", ErrAttemptActive, id)
	}

	a := &attempt{
		id:         uuid.New(),
		sessionKey: sessionKey,
		productID:  productID,
		objectType: objectType,
		state:      ports.StateCapturing,
	}

	s.mu.Lock()
	s.attempts[a.id] = a
	s.mu.Unlock()
	cs.active[productID] = a.id

	s.logger.InfoContext(ctx, "attempt started",
		slog.String("session", sessionKey),
		slog.String("product_id", productID),
		slog.String("attempt_id", a.id.String()),
		slog.String("object_type", string(objectType)))

	return s.view(a, cs), nil
}

// Detect sends the captured image through the detection client. On success
// the attempt moves to Reconciling with the immutable result attached; on a
// boundary failure it moves to Failed without touching session state. A
// caller-cancelled context rewinds to Capturing so the operator can retake.
func (s *CountService) Detect(ctx context.Context, attemptID uuid.UUID, image []byte, filename string) (*ports.AttemptView, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	a, cs, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	if a.state != ports.StateCapturing {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: detect requires capturing, attempt is %s", ErrInvalidState, a.state)
	}
	a.state = ports.StateDetecting
	objectType := a.objectType
	cs.mu.Unlock()

	result, derr := s.vision.Detect(ctx, image, objectType, filename)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if derr != nil {
		if errors.Is(derr, context.Canceled) {
			// Operator abandoned mid-flight: no partial result, retake allowed.
			a.state = ports.StateCapturing
			return nil, derr
		}
		a.state = ports.StateFailed
		a.failure = domain.KindOf(derr)
		cs.releaseProduct(a)
		s.markTerminal(a)
		s.logger.WarnContext(ctx, "detection failed",
			slog.String("attempt_id", a.id.String()),
			slog.String("kind", string(a.failure)),
			slog.String("error", derr.Error()))
		return nil, derr
	}

	a.result = result
	a.adjustments = nil
	a.adds, a.removes = 0, 0
	a.state = ports.StateReconciling
	a.imagePath = s.stashEvidence(ctx, a.id, "capture.jpg", image)
	if len(result.AnnotatedImage) > 0 {
		a.annotatedPath = s.stashEvidence(ctx, a.id, "annotated.jpg", result.AnnotatedImage)
	}

	s.logger.InfoContext(ctx, "detection complete",
		slog.String("attempt_id", a.id.String()),
		slog.Int("estimated", result.EstimatedCount),
		slog.Float64("avg_confidence", result.AverageConfidence()))

	return s.view(a, cs), nil
}

// Adjust applies one manual correction. Only valid while reconciling; the
// returned view carries the recomputed final count, so an over-removal at
// zero is visible to the caller as an unchanged value.
func (s *CountService) Adjust(ctx context.Context, attemptID uuid.UUID, kind domain.AdjustmentKind) (*ports.AttemptView, error) {
	if !domain.ValidAdjustmentKind(kind) {
		return nil, fmt.Errorf("%w: unknown adjustment kind %q", ErrInvalidState, kind)
	}

	a, cs, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if a.state != ports.StateReconciling {
		return nil, fmt.Errorf("%w: adjust requires reconciling, attempt is %s", ErrInvalidState, a.state)
	}

	a.adjustments = append(a.adjustments, domain.Adjustment{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now(),
	})
	switch kind {
	case domain.AdjustmentAdd:
		a.adds++
	case domain.AdjustmentRemove:
		a.removes++
	}

	return s.view(a, cs), nil
}

// Cancel discards an attempt from any non-terminal state. The detection
// result and the adjustment log are dropped; the item's counted quantity is
// untouched.
func (s *CountService) Cancel(ctx context.Context, attemptID uuid.UUID) error {
	a, cs, err := s.attempt(attemptID)
	if err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if a.state == ports.StateConfirmed {
		return fmt.Errorf("%w: confirmed attempts cannot be cancelled", ErrInvalidState)
	}
	if cs.submitting[a.productID] {
		return fmt.Errorf("%w: %s", ErrSubmissionInFlight, a.productID)
	}

	s.dropAttempt(a, cs)

	s.logger.InfoContext(ctx, "attempt cancelled",
		slog.String("attempt_id", a.id.String()),
		slog.String("product_id", a.productID))
	return nil
}

// Confirm submits the reconciled count to the ERP. On success the item's
// counted quantity becomes authoritative, a server-issued inventory id is
// adopted for the whole session, and the evidence archive task is enqueued.
// On any failure the item is left exactly as it was.
func (s *CountService) Confirm(ctx context.Context, attemptID uuid.UUID) (*ports.AttemptView, error) {
	a, cs, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	if a.state != ports.StateReconciling {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm requires reconciling, attempt is %s", ErrInvalidState, a.state)
	}
	if cs.submitting[a.productID] {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSubmissionInFlight, a.productID)
	}
	item := cs.items[a.productID]
	final := domain.FinalCount(a.result.EstimatedCount, a.adds, a.removes)
	session := cs.session
	cs.submitting[a.productID] = true
	cs.mu.Unlock()

	newID, serr := s.submit(ctx, cs, session, item, final, domain.SourceDetection, a)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.submitting[a.productID] = false

	if serr != nil {
		a.state = ports.StateFailed
		a.failure = domain.KindOf(serr)
		cs.releaseProduct(a) // back to Idle: operator may restart
		s.markTerminal(a)
		return nil, serr
	}

	v := domain.Variance(final, item.ExpectedStock)
	a.variance = &v
	a.state = ports.StateConfirmed
	item.CountedQuantity = &final
	if newID != "" {
		cs.session.InventoryID = newID
	}
	cs.releaseProduct(a)
	if s.archiver != nil && a.imagePath != "" {
		// submit handed the temp files to the archive worker
		a.imagePath, a.annotatedPath = "", ""
	}
	s.markTerminal(a)

	return s.view(a, cs), nil
}

// SubmitManual records an operator-entered quantity without any detection
// state. It converges on the same persistence contract as Confirm.
func (s *CountService) SubmitManual(ctx context.Context, sessionKey, productID string, counted int) (*domain.CountItem, error) {
	if counted < 0 {
		return nil, ErrNegativeQuantity
	}

	cs, err := s.session(sessionKey)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	item, ok := cs.items[productID]
	if !ok {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if _, busy := cs.active[productID]; busy {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAttemptActive, productID)
	}
	if cs.submitting[productID] {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSubmissionInFlight, productID)
	}
	session := cs.session
	cs.submitting[productID] = true
	cs.mu.Unlock()

	newID, serr := s.submit(ctx, cs, session, item, counted, domain.SourceManual, nil)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.submitting[productID] = false

	if serr != nil {
		return nil, serr
	}

	item.CountedQuantity = &counted
	if newID != "" {
		cs.session.InventoryID = newID
	}

	snapshot := *item
	return &snapshot, nil
}

// Attempt returns the current snapshot of an attempt.
func (s *CountService) Attempt(ctx context.Context, attemptID uuid.UUID) (*ports.AttemptView, error) {
	a, cs, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return s.view(a, cs), nil
}

// submit performs one persistence call and writes the journal record. It
// never mutates the item; callers apply the optimistic update only after a
// nil return. The journal write is best-effort.
func (s *CountService) submit(ctx context.Context, cs *countSession, session domain.CountSession,
	item *domain.CountItem, counted int, source domain.CountSource, a *attempt) (string, error) {

	newID, err := s.erp.SubmitCount(ctx, session, item.ProductID, item.WarehouseID, counted, item.ExpectedStock)

	entry := &domain.JournalEntry{
		CompanyID:       session.CompanyID,
		BranchID:        session.BranchID,
		InventoryID:     session.InventoryID,
		ProductID:       item.ProductID,
		WarehouseID:     item.WarehouseID,
		CountedQuantity: counted,
		ExpectedStock:   item.ExpectedStock,
		Source:          source,
		Outcome:         domain.OutcomeConfirmed,
		NewInventoryID:  newID,
	}
	if err != nil {
		entry.Outcome = domain.OutcomeFailed
		entry.FailureKind = string(domain.KindOf(err))
	}
	entry.PrepareForStorage()

	if jerr := s.journal.Record(ctx, entry); jerr != nil {
		s.logger.WarnContext(ctx, "failed to record journal entry",
			slog.String("product_id", item.ProductID),
			slog.String("error", jerr.Error()))
	}

	if err != nil {
		s.logger.WarnContext(ctx, "count submission failed",
			slog.String("product_id", item.ProductID),
			slog.String("kind", string(domain.KindOf(err))),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to submit count: %w", err)
	}

	// The cached item snapshot predates this submission; drop it so the next
	// session open refetches the list instead of resurrecting stale counts.
	if cerr := s.cache.Delete(ctx, itemsCacheKey(session.Key())); cerr != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached item list",
			slog.String("session", session.Key()),
			slog.String("error", cerr.Error()))
	}

	if newID != "" && newID != session.InventoryID {
		if cerr := s.cache.Set(ctx, inventoryIDCacheKey(session.Key()), newID); cerr != nil {
			s.logger.WarnContext(ctx, "failed to cache inventory id",
				slog.String("error", cerr.Error()))
		}
		s.logger.InfoContext(ctx, "adopted new inventory id",
			slog.String("session", session.Key()),
			slog.String("inventory_id", newID))
	}

	if a != nil && s.archiver != nil && a.imagePath != "" {
		payload := ports.EvidencePayload{
			JournalID:     entry.ID,
			SessionKey:    session.Key(),
			ProductID:     item.ProductID,
			ImagePath:     a.imagePath,
			AnnotatedPath: a.annotatedPath,
		}
		if aerr := s.archiver.ArchiveEvidence(ctx, payload); aerr != nil {
			s.logger.WarnContext(ctx, "failed to enqueue evidence archive",
				slog.String("error", aerr.Error()))
		}
	}

	s.logger.InfoContext(ctx, "count submitted",
		slog.String("product_id", item.ProductID),
		slog.Int("counted", counted),
		slog.String("variance", entry.Variance.String()),
		slog.String("source", string(source)))

	return newID, nil
}

// stashEvidence writes capture bytes to the temp dir for later archiving.
// Failures only disable archiving for this attempt.
func (s *CountService) stashEvidence(ctx context.Context, attemptID uuid.UUID, name string, data []byte) string {
	if s.archiver == nil || s.tempDir == "" {
		return ""
	}
	path := filepath.Join(s.tempDir, fmt.Sprintf("%s_%s", attemptID, name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logger.WarnContext(ctx, "failed to stash evidence file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return ""
	}
	return path
}

func (s *CountService) session(key string) (*countSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}
	return cs, nil
}

func (s *CountService) attempt(id uuid.UUID) (*attempt, *countSession, error) {
	s.mu.RLock()
	a, ok := s.attempts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	cs, err := s.session(a.sessionKey)
	if err != nil {
		return nil, nil, err
	}
	return a, cs, nil
}

// releaseProduct frees the product's attempt slot if this attempt still owns
// it. Caller holds mu.
func (cs *countSession) releaseProduct(a *attempt) {
	if cur, ok := cs.active[a.productID]; ok && cur == a.id {
		delete(cs.active, a.productID)
	}
}

// markTerminal stamps an attempt as finished so sweepTerminal can evict it
// once the retention window passes.
func (s *CountService) markTerminal(a *attempt) {
	s.mu.Lock()
	a.doneAt = time.Now()
	s.mu.Unlock()
}

// sweepTerminal evicts confirmed and failed attempts whose retention window
// has passed, together with any evidence files still stashed for them. It
// runs on the session open and attempt begin paths, so a long-lived process
// does not accumulate finished attempts.
func (s *CountService) sweepTerminal() {
	cutoff := time.Now().Add(-s.terminalTTL)

	var stale []*attempt
	s.mu.Lock()
	for id, a := range s.attempts {
		if !a.doneAt.IsZero() && a.doneAt.Before(cutoff) {
			delete(s.attempts, id)
			stale = append(stale, a)
		}
	}
	s.mu.Unlock()

	for _, a := range stale {
		for _, p := range []string{a.imagePath, a.annotatedPath} {
			if p != "" {
				_ = os.Remove(p)
			}
		}
	}
}

// dropAttempt removes an attempt and its stashed evidence. Caller holds cs.mu.
func (s *CountService) dropAttempt(a *attempt, cs *countSession) {
	cs.releaseProduct(a)
	s.mu.Lock()
	delete(s.attempts, a.id)
	s.mu.Unlock()

	for _, p := range []string{a.imagePath, a.annotatedPath} {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

// view builds the external snapshot. Caller holds cs.mu.
func (s *CountService) view(a *attempt, cs *countSession) *ports.AttemptView {
	v := &ports.AttemptView{
		ID:         a.id,
		SessionKey: a.sessionKey,
		ProductID:  a.productID,
		ObjectType: a.objectType,
		State:      a.state,
		Variance:   a.variance,
	}
	if a.result != nil {
		v.EstimatedCount = a.result.EstimatedCount
		v.AverageConfidence = a.result.AverageConfidence()
		v.Adds = a.adds
		v.Removes = a.removes
		v.FinalCount = domain.FinalCount(a.result.EstimatedCount, a.adds, a.removes)
	}
	if a.state == ports.StateFailed {
		v.FailureKind = a.failure
		v.FailureMessage = domain.UserMessage(a.failure)
	}
	return v
}

func (s *CountService) sessionState(cs *countSession) *ports.SessionState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return &ports.SessionState{
		Key:     cs.session.Key(),
		Session: cs.session,
		Items:   cs.itemSnapshot(),
	}
}

// itemSnapshot copies the items in fetch order. Caller holds mu.
func (cs *countSession) itemSnapshot() []*domain.CountItem {
	out := make([]*domain.CountItem, 0, len(cs.order))
	for _, pid := range cs.order {
		if item, ok := cs.items[pid]; ok {
			snapshot := *item
			out = append(out, &snapshot)
		}
	}
	return out
}

func itemsCacheKey(sessionKey string) string {
	return "count:items:" + sessionKey
}

func inventoryIDCacheKey(sessionKey string) string {
	return "count:session:" + sessionKey
}
