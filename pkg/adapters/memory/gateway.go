package memory

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/google/uuid"
)

// Gateway implements ports.LanternGateway and ports.LanternReader in memory.
// It applies the same validation as the remote service, which makes it useful
// for offline runs and as the backing store of the fake remote.
type Gateway struct {
	mu       sync.RWMutex
	lanterns map[string]domain.LanternRecord
	order    []string
}

// NewGateway creates an empty in-memory lantern service.
func NewGateway() *Gateway {
	return &Gateway{
		lanterns: make(map[string]domain.LanternRecord),
	}
}

// CreateLantern validates and stores a lantern under a fresh ID.
func (g *Gateway) CreateLantern(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.LanternRecord{}, &domain.GatewayError{Kind: domain.GatewayUnreachable, Err: err}
	}
	if detail := Validate(req); detail != "" {
		return domain.LanternRecord{}, &domain.GatewayError{Kind: domain.GatewayRejected, Detail: detail}
	}

	rec := domain.LanternRecord{ID: uuid.NewString(), LanternRequest: req}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.lanterns[rec.ID] = rec
	g.order = append(g.order, rec.ID)
	return rec, nil
}

// GetLantern returns a stored lantern.
func (g *Gateway) GetLantern(ctx context.Context, id string) (domain.LanternRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.lanterns[id]
	if !ok {
		return domain.LanternRecord{}, &domain.GatewayError{Kind: domain.GatewayNotFound, Detail: "Lantern not found"}
	}
	return rec, nil
}

// Lanterns returns every stored lantern in creation order.
func (g *Gateway) Lanterns() []domain.LanternRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]domain.LanternRecord, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.lanterns[id])
	}
	return out
}

// Validate returns a human readable reason when req would be refused by the
// remote service, or "" when it is acceptable.
func Validate(req domain.LanternRequest) string {
	if strings.TrimSpace(req.Message) == "" {
		return "message is required"
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return "value is not a valid email address"
		}
	}
	if req.Birthdate != "" {
		if _, err := domain.ParseDate(req.Birthdate); err != nil {
			return "birthdate must be YYYY-MM-DD"
		}
	}
	return ""
}
