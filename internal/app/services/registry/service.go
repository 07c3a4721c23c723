// Package registry implements channel registration and lookup.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	"github.com/payaction/channel_layer/internal/app/storage"
	"github.com/payaction/channel_layer/internal/app/validation"
	apperr "github.com/payaction/channel_layer/internal/errors"
	"github.com/payaction/channel_layer/pkg/logger"
)

// Link construction modes for a record's external link.
const (
	// LinkModeDerived builds the external link from the base URL and the
	// derived route. This is the default policy.
	LinkModeDerived = "derived"
	// LinkModeDirect honors the caller-supplied external link.
	LinkModeDirect = "direct"
)

// DefaultCoverImage is applied when a registration omits the cover image.
const DefaultCoverImage = "https://static.payaction.io/channel-cover.png"

// Config consolidates the registration policies.
type Config struct {
	DefaultCoverImage   string
	LinkMode            string
	BaseURL             string
	ContactAllowedHosts []string
}

// RegisterRequest carries the caller-supplied fields for a new channel.
type RegisterRequest struct {
	ChannelName  string
	Description  string
	Fee          float64
	OwnerAddress string
	CoverImage   string
	ContactLink  string
	ExternalLink string
}

// Service orchestrates validation, route derivation and persistence.
type Service struct {
	store storage.ChannelStore
	cfg   Config
	log   *logger.Logger

	// writeMu serializes the load-check-append-save cycle so two concurrent
	// registrations cannot both pass the uniqueness check and lose an append.
	// Reads proceed without it since records are immutable after creation.
	writeMu sync.Mutex
}

// New constructs a registry service.
func New(store storage.ChannelStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("registry")
	}
	if cfg.DefaultCoverImage == "" {
		cfg.DefaultCoverImage = DefaultCoverImage
	}
	if cfg.LinkMode == "" {
		cfg.LinkMode = LinkModeDerived
	}
	return &Service{store: store, cfg: cfg, log: log}
}

// Register validates the request, derives the route and persists the record.
// Validation runs in the documented precedence and fails closed: nothing is
// written unless every check passes and the route is unused.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (channel.Record, error) {
	req.ChannelName = strings.TrimSpace(req.ChannelName)
	req.Description = strings.TrimSpace(req.Description)
	req.OwnerAddress = strings.TrimSpace(req.OwnerAddress)
	req.CoverImage = strings.TrimSpace(req.CoverImage)
	req.ContactLink = strings.TrimSpace(req.ContactLink)
	req.ExternalLink = strings.TrimSpace(req.ExternalLink)

	if err := validation.Name(req.ChannelName); err != nil {
		return channel.Record{}, err
	}
	if err := validation.Description(req.Description); err != nil {
		return channel.Record{}, err
	}
	if err := validation.Fee(req.Fee); err != nil {
		return channel.Record{}, err
	}
	if err := validation.Address(req.OwnerAddress); err != nil {
		return channel.Record{}, err
	}
	if req.CoverImage != "" {
		if err := validation.URL(req.CoverImage); err != nil {
			return channel.Record{}, err
		}
	}
	if err := validation.ContactLink(req.ContactLink, s.cfg.ContactAllowedHosts); err != nil {
		return channel.Record{}, err
	}

	route := channel.DeriveRoute(req.ChannelName)

	externalLink, err := s.externalLink(route, req.ExternalLink)
	if err != nil {
		return channel.Record{}, err
	}

	coverImage := req.CoverImage
	if coverImage == "" {
		coverImage = s.cfg.DefaultCoverImage
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return channel.Record{}, err
	}
	for _, existing := range records {
		if existing.Route == route {
			return channel.Record{}, apperr.DuplicateChannel(route)
		}
	}

	rec := channel.Record{
		Route:        route,
		ChannelName:  req.ChannelName,
		Description:  req.Description,
		Fee:          req.Fee,
		CoverImage:   coverImage,
		OwnerAddress: req.OwnerAddress,
		ExternalLink: externalLink,
		ContactLink:  req.ContactLink,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Save(ctx, append(records, rec)); err != nil {
		return channel.Record{}, err
	}

	s.log.WithField("route", route).
		WithField("channel", rec.ChannelName).
		Info("channel registered")
	return rec, nil
}

// Resolve looks up a channel by display name via its derived route.
func (s *Service) Resolve(ctx context.Context, channelName string) (channel.Record, error) {
	route := channel.DeriveRoute(channelName)

	records, err := s.store.Load(ctx)
	if err != nil {
		return channel.Record{}, err
	}
	for _, rec := range records {
		if rec.Route == route {
			return rec, nil
		}
	}
	return channel.Record{}, apperr.NotFound("channel not found")
}

// List returns the public-safe summaries in insertion order.
func (s *Service) List(ctx context.Context) ([]channel.Summary, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]channel.Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, channel.Summarize(rec))
	}
	return summaries, nil
}

func (s *Service) externalLink(route, supplied string) (string, error) {
	switch s.cfg.LinkMode {
	case LinkModeDirect:
		if err := validation.URL(supplied); err != nil {
			return "", apperr.InvalidURL("external link must be an absolute http(s) URL")
		}
		return supplied, nil
	default:
		return strings.TrimRight(s.cfg.BaseURL, "/") + route, nil
	}
}
