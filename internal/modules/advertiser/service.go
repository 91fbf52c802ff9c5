package advertiser

import (
	"context"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/validator"

	"github.com/sirupsen/logrus"
)

type Service struct {
	profiles  ProfileStore
	documents DocumentStore
	objects   Objects
	log       logrus.FieldLogger
	linkTTL   time.Duration
	now       func() time.Time
}

// NewService builds the profile service. linkTTL bounds the signed URLs
// handed to reviewers.
func NewService(profiles ProfileStore, documents DocumentStore, objects Objects, log logrus.FieldLogger, linkTTL time.Duration) *Service {
	return &Service{
		profiles:  profiles,
		documents: documents,
		objects:   objects,
		log:       log,
		linkTTL:   linkTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateProfile turns an account into an advertiser. A user has at most
// one profile; a second attempt is a conflict.
func (s *Service) CreateProfile(ctx context.Context, who access.Identity, in CreateProfileInput) (*domain.AdvertiserProfile, error) {
	if err := access.Authorize(who, access.ProfileManage, access.None); err != nil {
		return nil, err
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	a := &domain.AdvertiserProfile{UserID: who.UserID, DisplayName: in.DisplayName}
	if err := s.profiles.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"advertiser_id": a.ID, "user_id": who.UserID}).Info("advertiser profile created")
	return a, nil
}

func (s *Service) GetProfile(ctx context.Context, who access.Identity) (*domain.AdvertiserProfile, error) {
	if err := access.Authorize(who, access.ProfileManage, access.None); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, who.UserID)
}

// UpdateProfile edits display and contact fields. Verification fields are
// never written here.
func (s *Service) UpdateProfile(ctx context.Context, who access.Identity, in UpdateProfileInput) (*domain.AdvertiserProfile, error) {
	cur, err := s.GetProfile(ctx, who)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		in.DisplayName = &name
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.now()}
	if in.DisplayName != nil {
		fields["display_name"] = *in.DisplayName
	}
	for column, v := range map[string]*string{
		"bio":       in.Bio,
		"whatsapp":  in.Whatsapp,
		"telegram":  in.Telegram,
		"instagram": in.Instagram,
	} {
		if v == nil {
			continue
		}
		if t := strings.TrimSpace(*v); t != "" {
			fields[column] = t
		} else {
			fields[column] = nil
		}
	}

	if err := s.profiles.UpdateProfile(ctx, cur.ID, fields); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, who.UserID)
}

// SubmitVerification stores identity documents in the private bucket and
// puts the profile back into pending review.
func (s *Service) SubmitVerification(ctx context.Context, who access.Identity, document storage.File, selfie *storage.File, notes *string) (*domain.VerificationDocument, error) {
	profile, err := s.GetProfile(ctx, who)
	if err != nil {
		return nil, err
	}
	if _, err := storage.Detect(storage.KindDocument, document); err != nil {
		return nil, err
	}
	if selfie != nil {
		if _, err := storage.Detect(storage.KindDocument, *selfie); err != nil {
			return nil, err
		}
	}

	var uploaded []*storage.Object
	cleanup := func() {
		for _, o := range uploaded {
			if err := s.objects.Delete(ctx, o.Bucket, o.Path); err != nil {
				s.log.WithFields(logrus.Fields{"path": o.Path, "error": err.Error()}).Warn("object cleanup failed")
			}
		}
	}

	docObj, err := s.objects.Put(ctx, storage.BucketVerificationDocs, profile.ID, storage.KindDocument, document)
	if err != nil {
		return nil, err
	}
	uploaded = append(uploaded, docObj)

	doc := &domain.VerificationDocument{AdvertiserID: profile.ID, DocumentPath: docObj.Path}
	if selfie != nil {
		selfieObj, err := s.objects.Put(ctx, storage.BucketVerificationDocs, profile.ID, storage.KindDocument, *selfie)
		if err != nil {
			cleanup()
			return nil, err
		}
		uploaded = append(uploaded, selfieObj)
		doc.SelfiePath = &selfieObj.Path
	}
	if notes != nil {
		if t := strings.TrimSpace(*notes); t != "" {
			doc.Notes = &t
		}
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		cleanup()
		return nil, err
	}
	if err := s.profiles.SetVerification(ctx, profile.ID, domain.VerificationPending); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"advertiser_id": profile.ID, "document_id": doc.ID}).Info("verification submitted")
	return doc, nil
}

// DocumentLinks signs read access to a submission for reviewers.
func (s *Service) DocumentLinks(ctx context.Context, who access.Identity, documentID string) (*DocumentLinks, error) {
	if err := access.Authorize(who, access.VerificationReview, access.None); err != nil {
		return nil, err
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.Links(doc)
}

// Links signs the paths of doc without an access check; callers have
// already authorized the reviewer.
func (s *Service) Links(doc *domain.VerificationDocument) (*DocumentLinks, error) {
	docURL, err := s.objects.SignedURL(storage.BucketVerificationDocs, doc.DocumentPath, s.linkTTL)
	if err != nil {
		return nil, err
	}
	links := &DocumentLinks{DocumentURL: docURL, ExpiresAt: s.now().Add(s.linkTTL)}
	if doc.SelfiePath != nil {
		selfieURL, err := s.objects.SignedURL(storage.BucketVerificationDocs, *doc.SelfiePath, s.linkTTL)
		if err != nil {
			return nil, err
		}
		links.SelfieURL = &selfieURL
	}
	return links, nil
}
