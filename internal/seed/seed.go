// Package seed loads reference plans and demo data. Every step is safe to
// re-run: existing rows are updated or left alone, never duplicated.
package seed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/security"
)

const (
	DemoPassword       = "password123"
	DemoInvitationCode = "FRIENDPASS"
	demoInviterEmail   = "john@example.com"
	demoInviteeEmail   = "friend@example.com"
	invitationDays     = 30
)

var Plans = []models.SubscriptionPlan{
	{Code: "basic_sd", Name: "Basic SD", PriceCents: 799, Currency: enums.CurrencyEUR, MaxQuality: enums.QualitySD, ConcurrentStreams: 1, TrialDays: 7},
	{Code: "standard_hd", Name: "Standard HD", PriceCents: 1199, Currency: enums.CurrencyEUR, MaxQuality: enums.QualityHD, ConcurrentStreams: 2, TrialDays: 7},
	{Code: "premium_uhd", Name: "Premium UHD", PriceCents: 1599, Currency: enums.CurrencyEUR, MaxQuality: enums.QualityUHD, ConcurrentStreams: 4, TrialDays: 7},
}

type demoUser struct {
	Name  string
	Email string
}

var demoUsers = []demoUser{
	{Name: "John Doe", Email: demoInviterEmail},
	{Name: "Jane Smith", Email: "jane@example.com"},
	{Name: "Bob Johnson", Email: "bob@example.com"},
}

type demoSeason struct {
	Number   int
	Episodes int
}

type demoTitle struct {
	Name            string
	Type            enums.TitleType
	Description     string
	ReleaseYear     int
	DurationSeconds int
	Qualities       []enums.QualityName
	Seasons         []demoSeason
}

var demoTitles = []demoTitle{
	{
		Name:            "StreamFlix Originals: The Rise",
		Type:            enums.TitleTypeMovie,
		Description:     "A thriller about a startup that takes over the streaming world.",
		ReleaseYear:     2024,
		DurationSeconds: 7200,
		Qualities:       []enums.QualityName{enums.QualityHD, enums.QualityUHD},
	},
	{
		Name:        "StreamFlix Originals: The Series",
		Type:        enums.TitleTypeSeries,
		Description: "A mini-series following a team of developers shipping a hit platform.",
		ReleaseYear: 2025,
		Qualities:   []enums.QualityName{enums.QualitySD, enums.QualityHD},
		Seasons:     []demoSeason{{Number: 1, Episodes: 3}},
	},
}

type Seeder struct {
	db       *gorm.DB
	logg     *logger.Logger
	password config.PasswordConfig
	clock    func() time.Time
}

func New(conn *gorm.DB, logg *logger.Logger, password config.PasswordConfig) (*Seeder, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{db: conn, logg: logg, password: password, clock: time.Now}, nil
}

// All runs every step in dependency order.
func (s *Seeder) All(ctx context.Context) error {
	steps := []func(context.Context) error{s.Plans, s.Users, s.Content, s.Invitation}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Plans upserts the plan catalog keyed by code.
func (s *Seeder) Plans(ctx context.Context) error {
	for _, plan := range Plans {
		row := plan
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price_cents", "currency", "max_quality", "concurrent_streams", "trial_days", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert plan %s: %w", plan.Code, err)
		}
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(Plans)), "seed.plans")
	return nil
}

// Users creates the verified demo accounts that do not exist yet.
func (s *Seeder) Users(ctx context.Context) error {
	hash, err := security.HashPassword(DemoPassword, s.password)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	created := 0
	for _, u := range demoUsers {
		var existing models.User
		err := s.db.WithContext(ctx).Where("email = ?", u.Email).Limit(1).Find(&existing).Error
		if err != nil {
			return fmt.Errorf("lookup %s: %w", u.Email, err)
		}
		if existing.ID != 0 {
			continue
		}
		user := &models.User{Name: u.Name, Email: u.Email, PasswordHash: hash, IsActive: true, EmailVerified: true}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("create %s: %w", u.Email, err)
		}
		created++
	}
	s.logg.Info(s.logg.WithField(ctx, "created", created), "seed.users")
	return nil
}

// Content inserts the demo movie and series unless a title with the same
// name is already present.
func (s *Seeder) Content(ctx context.Context) error {
	created := 0
	for _, def := range demoTitles {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Title{}).Where("name = ?", def.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup title %q: %w", def.Name, err)
		}
		if count > 0 {
			continue
		}
		if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return createTitle(tx, def)
		}); err != nil {
			return fmt.Errorf("seed title %q: %w", def.Name, err)
		}
		created++
	}
	s.logg.Info(s.logg.WithField(ctx, "created", created), "seed.content")
	return nil
}

func createTitle(tx *gorm.DB, def demoTitle) error {
	title := &models.Title{Name: def.Name, Type: def.Type, Description: def.Description, ReleaseYear: def.ReleaseYear}
	if err := tx.Create(title).Error; err != nil {
		return err
	}
	for _, q := range def.Qualities {
		if err := tx.Create(&models.Quality{TitleID: title.ID, Name: q}).Error; err != nil {
			return err
		}
	}

	if !def.Type.HasSeasons() {
		return tx.Create(&models.Episode{
			TitleID:         title.ID,
			EpisodeNumber:   1,
			DurationSeconds: def.DurationSeconds,
			VideoURL:        "https://cdn.example.com/demo/movie.mp4",
		}).Error
	}

	for _, sd := range def.Seasons {
		season := &models.Season{TitleID: title.ID, SeasonNumber: sd.Number}
		if err := tx.Create(season).Error; err != nil {
			return err
		}
		for n := 1; n <= sd.Episodes; n++ {
			name := fmt.Sprintf("Episode %d", n)
			desc := fmt.Sprintf("Season %d, Episode %d", sd.Number, n)
			seasonID := season.ID
			err := tx.Create(&models.Episode{
				TitleID:         title.ID,
				SeasonID:        &seasonID,
				EpisodeNumber:   n,
				Name:            &name,
				Description:     &desc,
				DurationSeconds: 2700,
				VideoURL:        fmt.Sprintf("https://cdn.example.com/demo/series/s%d/e%d.mp4", sd.Number, n),
			}).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Invitation issues the FRIENDPASS demo code from john to friend@example.com.
func (s *Seeder) Invitation(ctx context.Context) error {
	var inviter models.User
	if err := s.db.WithContext(ctx).Where("email = ?", demoInviterEmail).Limit(1).Find(&inviter).Error; err != nil {
		return fmt.Errorf("lookup inviter: %w", err)
	}
	if inviter.ID == 0 {
		return fmt.Errorf("inviter %s not found, seed users first", demoInviterEmail)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Invitation{}).Where("code = ?", DemoInvitationCode).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup invitation: %w", err)
	}
	if count > 0 {
		return nil
	}

	invitation := &models.Invitation{
		Code:                 DemoInvitationCode,
		InviterID:            inviter.ID,
		InviteeEmail:         demoInviteeEmail,
		Status:               enums.InvitationStatusPending,
		DiscountPercent:      25,
		DiscountDurationDays: 30,
		ExpiresAt:            s.clock().UTC().AddDate(0, 0, invitationDays),
	}
	if err := s.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "code", DemoInvitationCode), "seed.invitation")
	return nil
}
