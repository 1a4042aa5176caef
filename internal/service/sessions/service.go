package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
)

// Session одна checkout-сессия: оркестратор плюс мьютекс, сериализующий
// HTTP-доступ. Внутри ядро однопоточное, selection принадлежит сессии
// эксклюзивно.
type Session struct {
	ID string

	mu           sync.Mutex
	orchestrator *checkout.Orchestrator
	lastAccess   time.Time
}

// Do выполняет fn под блокировкой сессии и продлевает её TTL
func (s *Session) Do(fn func(o *checkout.Orchestrator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return fn(s.orchestrator)
}

// Service in-memory реестр checkout-сессий с TTL-очисткой.
// Сессии между собой не координируются: корректность против параллельных
// бронирований обеспечивает только авторитетная проверка на commit.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl             time.Duration
	newOrchestrator func() *checkout.Orchestrator
	gauge           Gauge
	logger          Logger
}

// NewService создает реестр сессий. factory создает оркестратор для новой
// сессии, gauge (опционально, может быть nil) отражает число живых сессий.
func NewService(factory func() *checkout.Orchestrator, ttl time.Duration, gauge Gauge, logger Logger) *Service {
	return &Service{
		sessions:        make(map[string]*Session),
		ttl:             ttl,
		newOrchestrator: factory,
		gauge:           gauge,
		logger:          logger,
	}
}

// Create создает новую сессию с пустым selection на шаге Services
func (s *Service) Create() *Session {
	session := &Session{
		ID:           uuid.NewString(),
		orchestrator: s.newOrchestrator(),
		lastAccess:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.setGauge(count)
	s.logger.Info("Sessions: created session id=%s (%d live)", session.ID, count)
	return session
}

// Get возвращает сессию по ID
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete удаляет сессию. Commit в полёте не отменяется: поздний успех
// остаётся в БД как осиротевшее бронирование и логируется оркестратором.
func (s *Service) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	s.setGauge(count)
}

// Count возвращает число живых сессий
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartCleanup запускает фоновую очистку истёкших сессий до закрытия stopCh
func (s *Service) StartCleanup(interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-stopCh:
				return
			}
		}
	}()
}

func (s *Service) evictExpired() {
	deadline := time.Now().Add(-s.ttl)

	s.mu.Lock()
	evicted := 0
	for id, session := range s.sessions {
		session.mu.Lock()
		expired := session.lastAccess.Before(deadline)
		session.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			evicted++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		s.setGauge(count)
		s.logger.Info("Sessions: evicted %d expired sessions (%d live)", evicted, count)
	}
}

func (s *Service) setGauge(count int) {
	if s.gauge != nil {
		s.gauge.Set(float64(count))
	}
}
