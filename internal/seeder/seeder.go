package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"

	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/service"
)

// Scenario describes the demo data to generate: one account, its websites
// and a traffic shape per event type. Loaded from YAML so demos can be
// tailored without recompiling.
type Scenario struct {
	User     UserSpec      `yaml:"user"`
	Websites []WebsiteSpec `yaml:"websites"`
}

type UserSpec struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type WebsiteSpec struct {
	Name   string      `yaml:"name"`
	URL    string      `yaml:"url"`
	Events []EventSpec `yaml:"events"`
}

// EventSpec shapes one event type's generated traffic. Identifier rates are
// fractions in [0,1]; DuplicateFires re-sends that many events with an
// already-used event_id so the duplicate detector has something to find.
type EventSpec struct {
	Name           string  `yaml:"name"`
	Count          int     `yaml:"count"`
	EmailRate      float64 `yaml:"email_rate"`
	PhoneRate      float64 `yaml:"phone_rate"`
	BrowserIDRate  float64 `yaml:"browser_id_rate"`
	ClickIDRate    float64 `yaml:"click_id_rate"`
	DuplicateFires int     `yaml:"duplicate_fires"`
	Value          float64 `yaml:"value"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	return &s, nil
}

// DefaultScenario is the built-in demo: one store with a healthy Purchase
// stream, an identifier-poor PageView stream and a duplicate-heavy
// AddToCart stream.
func DefaultScenario() *Scenario {
	return &Scenario{
		User: UserSpec{
			Name:     "Demo User",
			Email:    "demo@claritytracking.io",
			Password: "demo-password-1",
		},
		Websites: []WebsiteSpec{
			{
				Name: "Demo Store",
				URL:  "https://demo-store.example",
				Events: []EventSpec{
					{Name: "Purchase", Count: 120, EmailRate: 0.9, PhoneRate: 0.5, BrowserIDRate: 0.9, ClickIDRate: 0.4, Value: 59.90},
					{Name: "PageView", Count: 400, BrowserIDRate: 0.3},
					{Name: "AddToCart", Count: 80, EmailRate: 0.4, BrowserIDRate: 0.8, DuplicateFires: 12},
				},
			},
		},
	}
}

// Seeder generates demo data through the regular service layer, so every
// seeded row passes the same validation and normalization as live traffic.
type Seeder struct {
	auth     *service.AuthService
	websites *service.WebsiteService
	ingest   *service.IngestService
	logger   *logging.Logger
	faker    *gofakeit.Faker
}

func New(auth *service.AuthService, websites *service.WebsiteService, ingest *service.IngestService, logger *logging.Logger) *Seeder {
	return &Seeder{
		auth:     auth,
		websites: websites,
		ingest:   ingest,
		logger:   logger,
		faker:    gofakeit.New(0),
	}
}

// Run creates the scenario's account, websites and events. Re-running against
// a database that already has the account fails rather than duplicating data.
func (s *Seeder) Run(ctx context.Context, scenario *Scenario) error {
	user, err := s.auth.Register(ctx, &models.RegisterRequest{
		Name:     scenario.User.Name,
		Email:    scenario.User.Email,
		Password: scenario.User.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return fmt.Errorf("seed account %s already exists, refusing to re-seed", scenario.User.Email)
		}
		return err
	}

	s.logger.InfoContext(ctx, "seeded user", logging.UserID(user.ID), "email", user.Email)

	for _, ws := range scenario.Websites {
		website, err := s.websites.CreateWebsite(ctx, user.ID, &models.CreateWebsiteRequest{
			Name: ws.Name,
			URL:  ws.URL,
		})
		if err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "seeded website",
			logging.WebsiteID(website.ID), "name", website.Name)

		for _, ev := range ws.Events {
			if err := s.seedEvents(ctx, website, ev); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Seeder) seedEvents(ctx context.Context, website *models.Website, spec EventSpec) error {
	var reusableIDs []string

	for i := 0; i < spec.Count; i++ {
		req := s.buildEvent(spec)
		if req.EventID != "" {
			reusableIDs = append(reusableIDs, req.EventID)
		}

		if _, err := s.ingest.Ingest(ctx, website, req, s.faker.IPv4Address()); err != nil {
			return fmt.Errorf("failed to seed %s event: %w", spec.Name, err)
		}
	}

	// Replay already-used event ids to simulate double-firing snippets.
	for i := 0; i < spec.DuplicateFires && len(reusableIDs) > 0; i++ {
		req := s.buildEvent(spec)
		req.EventID = reusableIDs[rand.Intn(len(reusableIDs))]

		if _, err := s.ingest.Ingest(ctx, website, req, s.faker.IPv4Address()); err != nil {
			return fmt.Errorf("failed to seed duplicate %s event: %w", spec.Name, err)
		}
	}

	s.logger.InfoContext(ctx, "seeded events",
		logging.WebsiteID(website.ID),
		logging.EventName(spec.Name),
		"count", spec.Count+spec.DuplicateFires)

	return nil
}

func (s *Seeder) buildEvent(spec EventSpec) *models.IngestEventRequest {
	identifiers := &models.UserIdentifiers{
		UserAgent: s.faker.UserAgent(),
	}
	if rand.Float64() < spec.EmailRate {
		identifiers.Email = s.faker.Email()
	}
	if rand.Float64() < spec.PhoneRate {
		identifiers.Phone = s.faker.Phone()
	}
	if rand.Float64() < spec.BrowserIDRate {
		identifiers.BrowserID = s.faker.UUID()
	}
	if rand.Float64() < spec.ClickIDRate {
		identifiers.ClickID = s.faker.UUID()
	}

	req := &models.IngestEventRequest{
		EventName:      spec.Name,
		EventTime:      time.Now().Add(-time.Duration(rand.Intn(3600)) * time.Second).Unix(),
		EventID:        s.faker.UUID(),
		EventSourceURL: s.faker.URL(),
		UserData:       identifiers,
	}
	if spec.Value > 0 {
		v := spec.Value
		req.Value = &v
		req.Currency = "USD"
	}
	return req
}
