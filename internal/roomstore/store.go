// Package roomstore implements the two-tier room store: an in-process
// cache that is authoritative for the lifetime of the process, plus a
// best-effort write-through to Redis (documents keyed by room code) and
// a PostgreSQL archive for final reports and interview transcripts.
//
// Concurrency discipline: the cache map and every document in it are
// guarded by one RWMutex; readers always receive deep copies, so no
// caller ever holds a pointer into shared state. Persistence errors are
// logged and swallowed; the in-memory state always reflects the latest
// accepted operation (memory-first policy).
package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/models"
)

// Store is the persistence contract consumed by the room service and
// the interview registry.
type Store interface {
	CreateRoom(room *models.Room) error
	GetRoom(code string) (*models.Room, error)
	UpdateRoom(room *models.Room) error

	AddParticipant(code string, p *models.Participant) error
	GetParticipant(code, participantID string) (*models.Participant, error)
	RemoveParticipant(code, participantID string) error
	ListParticipants(code string) ([]*models.Participant, error)
	AddResponse(code, participantID string, resp models.Response) error

	SaveReport(code string, rep *models.Report) error
	GetReport(code string) (*models.Report, error)

	ArchiveInterview(rec *models.InterviewRecord) error
}

// roomDoc — документ кімнати, який кешується в пам'яті та
// зберігається в Redis одним JSON-об'єктом під ключем room:<CODE>.
// HostSecret дублюється на рівні документа: Room ховає секрет від
// клієнтських відповідей через json:"-", а документ у Redis мусить
// його зберегти, інакше після рестарту хост втрачає кімнату.
type roomDoc struct {
	Room         *models.Room          `json:"room"`
	HostSecret   string                `json:"host_secret"`
	Participants []*models.Participant `json:"participants"`
	Report       *models.Report        `json:"report,omitempty"`
}

// Service implements Store over the cache, Redis and PostgreSQL. Both
// backends are optional: without Redis the cache is the sole store and
// state does not survive a restart (explicit cache-only mode); without
// PostgreSQL nothing is archived.
type Service struct {
	mu    sync.RWMutex
	cache map[string]*roomDoc

	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService creates the store. Passing nil for either backend is a
// supported, logged mode, not a silent failure.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	if rdb == nil {
		log.Println("Warning: Redis not configured, running cache-only; room state will not survive a restart")
	}
	if db == nil {
		log.Println("Warning: PostgreSQL not configured, reports and transcripts will not be archived")
	}
	return &Service{
		cache: make(map[string]*roomDoc),
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func roomKey(code string) string { return "room:" + code }

// CreateRoom inserts a new room document. The caller is expected to
// have checked code availability via GetRoom; a duplicate here is a
// conflict.
func (s *Service) CreateRoom(room *models.Room) error {
	s.mu.Lock()
	if _, ok := s.cache[room.Code]; ok {
		s.mu.Unlock()
		return apperr.Conflictf("room %s already exists", room.Code)
	}
	doc := &roomDoc{Room: cloneRoom(room), Participants: []*models.Participant{}}
	s.cache[room.Code] = doc
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(room.Code, payload)
	return nil
}

// GetRoom returns a copy of the room. On cache miss the Redis tier is
// consulted and the document is populated back into the cache.
func (s *Service) GetRoom(code string) (*models.Room, error) {
	doc, err := s.getDoc(code)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRoom(doc.Room), nil
}

// UpdateRoom replaces the room state inside its document. Last writer
// wins; callers serialize through the per-room lock in the room service.
func (s *Service) UpdateRoom(room *models.Room) error {
	doc, err := s.getDoc(room.Code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	doc.Room = cloneRoom(room)
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(room.Code, payload)
	return nil
}

// AddParticipant appends a participant to the room document.
func (s *Service) AddParticipant(code string, p *models.Participant) error {
	doc, err := s.getDoc(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	doc.Participants = append(doc.Participants, cloneParticipant(p))
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(code, payload)
	return nil
}

// GetParticipant returns a copy of one participant.
func (s *Service) GetParticipant(code, participantID string) (*models.Participant, error) {
	doc, err := s.getDoc(code)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range doc.Participants {
		if p.ID == participantID {
			return cloneParticipant(p), nil
		}
	}
	return nil, apperr.NotFoundf("participant %s in room %s", participantID, code)
}

// RemoveParticipant deletes a participant from the room document.
func (s *Service) RemoveParticipant(code, participantID string) error {
	doc, err := s.getDoc(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for i, p := range doc.Participants {
		if p.ID == participantID {
			doc.Participants = append(doc.Participants[:i], doc.Participants[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return apperr.NotFoundf("participant %s in room %s", participantID, code)
	}
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(code, payload)
	return nil
}

// ListParticipants returns copies of all participants in join order.
func (s *Service) ListParticipants(code string) ([]*models.Participant, error) {
	doc, err := s.getDoc(code)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Participant, 0, len(doc.Participants))
	for _, p := range doc.Participants {
		out = append(out, cloneParticipant(p))
	}
	return out, nil
}

// AddResponse appends a response to the owning participant. Responses
// are immutable once appended.
func (s *Service) AddResponse(code, participantID string, resp models.Response) error {
	doc, err := s.getDoc(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for _, p := range doc.Participants {
		if p.ID == participantID {
			p.Responses = append(p.Responses, resp)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return apperr.NotFoundf("participant %s in room %s", participantID, code)
	}
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(code, payload)
	return nil
}

// SaveReport stores the final snapshot on the document and archives a
// report row in PostgreSQL when configured.
func (s *Service) SaveReport(code string, rep *models.Report) error {
	doc, err := s.getDoc(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	doc.Report = cloneReport(rep)
	turnOrder := append([]string(nil), doc.Room.TurnOrder...)
	payload := marshalDoc(doc)
	s.mu.Unlock()

	s.persist(code, payload)

	if s.DB != nil {
		body, err := json.Marshal(rep)
		if err != nil {
			log.Printf("ERROR: Failed to marshal report for room %s: %v", code, err)
			return nil
		}
		record := models.ReportRecord{
			RoomCode:  code,
			Topic:     rep.Topic,
			Mode:      string(rep.Mode),
			Rounds:    rep.Rounds,
			TurnOrder: turnOrder,
			Payload:   string(body),
		}
		if err := s.DB.Save(&record).Error; err != nil {
			// Best effort: архівна копія не блокує завершення кімнати.
			log.Printf("ERROR: Failed to archive report for room %s: %v", code, err)
		}
	}
	return nil
}

// GetReport returns the final snapshot, or NotFound before the room has
// ended.
func (s *Service) GetReport(code string) (*models.Report, error) {
	doc, err := s.getDoc(code)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc.Report == nil {
		return nil, apperr.NotFoundf("report for room %s", code)
	}
	return cloneReport(doc.Report), nil
}

// ArchiveInterview stores a completed interview transcript row.
// Best effort, same policy as report archiving.
func (s *Service) ArchiveInterview(rec *models.InterviewRecord) error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.Save(rec).Error; err != nil {
		log.Printf("ERROR: Failed to archive interview %s: %v", rec.SessionID, err)
	}
	return nil
}

// getDoc resolves the document for a code: cache first, then Redis.
func (s *Service) getDoc(code string) (*roomDoc, error) {
	s.mu.RLock()
	doc, ok := s.cache[code]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	if s.Redis == nil {
		return nil, apperr.NotFoundf("room %s", code)
	}

	raw, err := s.Redis.Get(s.Ctx, roomKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFoundf("room %s", code)
	}
	if err != nil {
		log.Printf("ERROR: Failed to read room %s from Redis: %v", code, err)
		return nil, apperr.NotFoundf("room %s", code)
	}

	loaded, err := decodeDoc([]byte(raw))
	if err != nil {
		log.Printf("ERROR: Corrupt room document %s in Redis: %v", code, err)
		return nil, apperr.NotFoundf("room %s", code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Інший запит міг заповнити кеш, поки ми читали Redis.
	if doc, ok := s.cache[code]; ok {
		return doc, nil
	}
	s.cache[code] = loaded
	return loaded, nil
}

// persist writes the marshaled document through to Redis. Errors are
// logged, never returned: the cache already accepted the mutation.
func (s *Service) persist(code string, payload []byte) {
	if s.Redis == nil || payload == nil {
		return
	}
	if err := s.Redis.Set(s.Ctx, roomKey(code), payload, 0).Err(); err != nil {
		log.Printf("ERROR: Failed to persist room %s to Redis: %v", code, err)
	}
}

// marshalDoc serializes a document while the caller holds the lock.
// The host secret is lifted onto the document so it survives the
// Room struct's secret-free client serialization.
func marshalDoc(doc *roomDoc) []byte {
	doc.HostSecret = doc.Room.HostSecret
	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("ERROR: Failed to marshal room document %s: %v", doc.Room.Code, err)
		return nil
	}
	return payload
}

// decodeDoc is the inverse of marshalDoc: it restores the host secret
// onto the room after the secret-free Room deserialization.
func decodeDoc(raw []byte) (*roomDoc, error) {
	doc := &roomDoc{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	if doc.Room != nil {
		doc.Room.HostSecret = doc.HostSecret
	}
	return doc, nil
}

func cloneRoom(r *models.Room) *models.Room {
	out := *r
	out.TurnOrder = append([]string(nil), r.TurnOrder...)
	out.RaisedHands = append([]string(nil), r.RaisedHands...)
	return &out
}

func cloneParticipant(p *models.Participant) *models.Participant {
	out := *p
	out.Responses = append([]models.Response(nil), p.Responses...)
	return &out
}

func cloneReport(rep *models.Report) *models.Report {
	out := *rep
	out.Results = append([]models.ParticipantResult(nil), rep.Results...)
	return &out
}
