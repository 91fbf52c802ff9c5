// Package seed loads reference data (tags, plans, staff accounts) from a
// YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"classifieds/internal/domain"
	"classifieds/internal/modules/moderation"
	"classifieds/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Fixture struct {
	Tags  []Tag   `yaml:"tags"`
	Plans []Plan  `yaml:"plans"`
	Staff []Staff `yaml:"staff"`
}

type Tag struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Inactive bool   `yaml:"inactive"`
}

type Plan struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Price         float64 `yaml:"price"`
	DurationDays  int     `yaml:"duration_days"`
	MaxPhotos     int     `yaml:"max_photos"`
	MaxHighlights int     `yaml:"max_highlights"`
	PriorityLevel int     `yaml:"priority_level"`
	Featured      bool    `yaml:"featured"`
}

type Staff struct {
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Name     string      `yaml:"name"`
	Role     domain.Role `yaml:"role"`
}

type Summary struct {
	Tags, Plans, Staff int
}

// Load decodes a fixture and rejects unknown keys.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, s := range f.Staff {
		if s.Role != domain.RoleAdmin && s.Role != domain.RoleModerator {
			return nil, fmt.Errorf("staff[%d] %s: role must be admin or moderator", i, s.Email)
		}
		if len(s.Password) < 8 {
			return nil, fmt.Errorf("staff[%d] %s: password must have at least 8 characters", i, s.Email)
		}
	}
	return &f, nil
}

// Apply upserts the fixture. Running it twice leaves the same rows.
func Apply(ctx context.Context, db *gorm.DB, f *Fixture, log logrus.FieldLogger) (Summary, error) {
	var sum Summary

	tags := repository.NewTagRepository(db)
	for _, t := range f.Tags {
		slug := t.Slug
		if slug == "" {
			slug = moderation.Slugify(t.Name)
		}
		if err := tags.Upsert(ctx, &domain.ServiceTag{Name: strings.TrimSpace(t.Name), Slug: slug, IsActive: !t.Inactive}); err != nil {
			return sum, err
		}
		sum.Tags++
	}

	plans := repository.NewPlanRepository(db)
	for _, p := range f.Plans {
		plan := &domain.Plan{
			Name:          p.Name,
			Price:         p.Price,
			DurationDays:  p.DurationDays,
			MaxPhotos:     p.MaxPhotos,
			MaxHighlights: p.MaxHighlights,
			PriorityLevel: p.PriorityLevel,
			IsFeatured:    p.Featured,
			IsActive:      true,
		}
		if p.Description != "" {
			desc := p.Description
			plan.Description = &desc
		}
		if err := plans.Upsert(ctx, plan); err != nil {
			return sum, err
		}
		sum.Plans++
	}

	users := repository.NewUserRepository(db)
	for _, s := range f.Staff {
		existing, err := users.GetByEmail(ctx, s.Email)
		switch {
		case err == nil:
			if err := users.GrantRole(ctx, existing.ID, s.Role); err != nil {
				return sum, err
			}
		case errors.Is(err, domain.ErrNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
			if err != nil {
				return sum, err
			}
			if err := users.Create(ctx, &domain.User{Email: s.Email, PasswordHash: string(hash), FullName: s.Name}, s.Role); err != nil {
				return sum, err
			}
			log.WithFields(logrus.Fields{"email": s.Email, "role": s.Role}).Info("staff account created")
		default:
			return sum, err
		}
		sum.Staff++
	}

	return sum, nil
}
