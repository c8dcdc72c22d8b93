package store

import (
	"sync"

	"tidywork/internal/booking/domain"
)

// MergeOutcome — результат применения push-события к стору.
type MergeOutcome int

const (
	MergeIgnored MergeOutcome = iota // версия не новее локальной
	MergeInserted
	MergeUpdated
)

// EarningsDelta — изменение профиля, применяемое атомарно с переходом статуса
// (выплата при завершении видна UI одновременно со сменой статуса).
type EarningsDelta struct {
	Payout    float64
	Tip       float64
	Completed int
	Cancelled int
}

func (d *EarningsDelta) invert() EarningsDelta {
	return EarningsDelta{
		Payout:    -d.Payout,
		Tip:       -d.Tip,
		Completed: -d.Completed,
		Cancelled: -d.Cancelled,
	}
}

// Store — единственный мутируемый разделяемый ресурс агента: три раздела
// бронирований плюс профиль воркера. Все секции мутации выполняются целиком
// под одним мьютексом; сериализация мутаций одного бронирования обеспечивается
// per-id флагом in-flight.
type Store struct {
	mu sync.Mutex

	offered map[string]*domain.Booking
	active  map[string]*domain.Booking
	history map[string]*domain.Booking

	profile       domain.WorkerProfile
	conversations map[string]*domain.Conversation

	// inFlight помечает бронирования с незавершенной оптимистичной мутацией.
	inFlight map[string]bool

	// serverVersions — последняя подтвержденная сервером версия по id.
	serverVersions map[string]int64
}

func NewStore(workerID string) *Store {
	return &Store{
		offered:        make(map[string]*domain.Booking),
		active:         make(map[string]*domain.Booking),
		history:        make(map[string]*domain.Booking),
		conversations:  make(map[string]*domain.Conversation),
		inFlight:       make(map[string]bool),
		serverVersions: make(map[string]int64),
		profile:        domain.WorkerProfile{WorkerID: workerID},
	}
}

func (s *Store) partitionFor(status domain.Status) map[string]*domain.Booking {
	switch status.Partition() {
	case domain.PartitionOffered:
		return s.offered
	case domain.PartitionHistory:
		return s.history
	default:
		return s.active
	}
}

// findLocked ищет бронирование во всех разделах. Вызывается под мьютексом.
func (s *Store) findLocked(id string) *domain.Booking {
	if b, ok := s.offered[id]; ok {
		return b
	}
	if b, ok := s.active[id]; ok {
		return b
	}
	if b, ok := s.history[id]; ok {
		return b
	}
	return nil
}

func (s *Store) removeLocked(id string) {
	delete(s.offered, id)
	delete(s.active, id)
	delete(s.history, id)
}

func (s *Store) putLocked(b *domain.Booking) {
	s.removeLocked(b.ID)
	s.partitionFor(b.Status)[b.ID] = b
}

// Get возвращает копию бронирования.
func (s *Store) Get(id string) (*domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.findLocked(id)
	if b == nil {
		return nil, false
	}
	return b.Clone(), true
}

// PartitionOf сообщает, в каком разделе лежит бронирование.
func (s *Store) PartitionOf(id string) (domain.Partition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offered[id]; ok {
		return domain.PartitionOffered, true
	}
	if _, ok := s.active[id]; ok {
		return domain.PartitionActive, true
	}
	if _, ok := s.history[id]; ok {
		return domain.PartitionHistory, true
	}
	return "", false
}

// Snapshot возвращает копии всех трех разделов.
func (s *Store) Snapshot() (offered, active, history []domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.offered {
		offered = append(offered, *b.Clone())
	}
	for _, b := range s.active {
		active = append(active, *b.Clone())
	}
	for _, b := range s.history {
		history = append(history, *b.Clone())
	}
	return offered, active, history
}

// Profile возвращает копию профиля воркера.
func (s *Store) Profile() domain.WorkerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetOnline переключает online-флаг и возвращает новое значение.
func (s *Store) SetOnline(online bool) domain.WorkerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Online = online
	return s.profile
}

// BeginMutation помечает бронирование как мутируемое. Вторая мутация того же
// id отклоняется до завершения первой.
func (s *Store) BeginMutation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return domain.ErrMutationInFlight
	}
	s.inFlight[id] = true
	return nil
}

// EndMutation снимает in-flight флаг.
func (s *Store) EndMutation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// Mutating сообщает, есть ли незавершенная мутация для id.
func (s *Store) Mutating(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[id]
}

// LastServerVersion — последняя подтвержденная сервером версия (0 если нет).
func (s *Store) LastServerVersion(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverVersions[id]
}

// ApplyOptimistic синхронно записывает новый снапшот в нужный раздел.
// Ненулевая delta применяется к профилю в той же критической секции.
func (s *Store) ApplyOptimistic(next *domain.Booking, delta *EarningsDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(next.Clone())
	if delta != nil {
		s.applyDeltaLocked(*delta)
	}
}

func (s *Store) applyDeltaLocked(d EarningsDelta) {
	s.profile.TotalEarnings += d.Payout
	s.profile.TotalTips += d.Tip
	s.profile.CompletedBookings += d.Completed
	s.profile.CancelledBookings += d.Cancelled
}

// ConfirmVersion фиксирует серверную версию после успешного удаленного вызова.
func (s *Store) ConfirmVersion(id string, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version > s.serverVersions[id] {
		s.serverVersions[id] = version
	}
	if b := s.findLocked(id); b != nil && version > b.Version {
		b.Version = version
	}
}

// Restore откатывает оптимистичную мутацию к снапшоту. Возвращает false, если
// бронирование было реконсилировано мимо снапшота (сервер уже прислал более
// новое состояние) — в этом случае откат не выполняется, чтобы не воскрешать
// устаревшее состояние.
func (s *Store) Restore(snap *domain.Booking, appliedVersion int64, delta *EarningsDelta) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.findLocked(snap.ID)
	superseded := s.serverVersions[snap.ID] > snap.Version ||
		(cur != nil && cur.Version != appliedVersion)

	if delta != nil {
		// Выплата откатывается: сервер не подтвердил переход. Исключение —
		// реконсилированное состояние само дошло до того же терминального
		// статуса: начисление тогда остается, иначе выплата завершенной
		// работы пропадет из профиля.
		keep := superseded && cur != nil &&
			((cur.Status == domain.StatusCompleted && delta.Completed > 0) ||
				(cur.Status == domain.StatusCancelled && delta.Cancelled > 0))
		if !keep {
			s.applyDeltaLocked(delta.invert())
		}
	}

	if superseded {
		return false
	}
	s.putLocked(snap.Clone())
	return true
}

// DropOffered удаляет бронирование из пула офферов (проигранная гонка клейма
// или оптимистичный decline). Возвращает снапшот удаленного.
func (s *Store) DropOffered(id string) (*domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.offered[id]
	if !ok {
		return nil, false
	}
	delete(s.offered, id)
	return b.Clone(), true
}

// Discard удаляет бронирование целиком — оффер забрал другой воркер.
// Не трогает состояние, если реконсилер уже переписал его.
func (s *Store) Discard(id string, appliedVersion int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.findLocked(id)
	if cur == nil {
		return false
	}
	if cur.Version != appliedVersion {
		return false
	}
	s.removeLocked(id)
	return true
}

// ReinsertOffered возвращает оффер после неудачного decline, если сервер
// не успел прислать более новое состояние.
func (s *Store) ReinsertOffered(snap *domain.Booking) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serverVersions[snap.ID] > snap.Version {
		return false
	}
	if s.findLocked(snap.ID) != nil {
		return false
	}
	s.putLocked(snap.Clone())
	return true
}

// Merge применяет авторитетное серверное состояние (push-событие или bulk
// load). Неизвестный id вставляется в раздел по статусу; известный
// переписывается только если входящая версия строго новее. Merge никогда не
// удаляет бронирование — смена статуса лишь перемещает его между разделами.
func (s *Store) Merge(incoming *domain.Booking) MergeOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if incoming.Version > s.serverVersions[incoming.ID] {
		s.serverVersions[incoming.ID] = incoming.Version
	}

	cur := s.findLocked(incoming.ID)
	if cur == nil {
		s.putLocked(incoming.Clone())
		return MergeInserted
	}
	if incoming.Version <= cur.Version {
		return MergeIgnored
	}
	s.putLocked(incoming.Clone())
	return MergeUpdated
}

// Unread выставляет счетчик непрочитанных для собеседника.
func (s *Store) Unread(counterpartID string, unread int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[counterpartID]
	if !ok {
		c = &domain.Conversation{CounterpartID: counterpartID}
		s.conversations[counterpartID] = c
	}
	c.Unread = unread
}

// Conversations возвращает копии всех счетчиков.
func (s *Store) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, *c)
	}
	return out
}
