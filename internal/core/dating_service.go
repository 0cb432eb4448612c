package core

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/metrics"
	"happiness.app/happiness-creator/internal/store"
)

const otherProfilesLimit = 20

var ErrUnsupportedImage = errors.New("only png, jpg and jpeg images are accepted")

var allowedImageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

type ProfileForm struct {
	Name        string `validate:"required"`
	Interest    string `validate:"required"`
	Description string
}

// ImageUpload is an optional profile picture as received from the form.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ImageURLPrefix is where the image directory is served.
const ImageURLPrefix = "/profile_pics/"

// ProfileCard is a dating profile prepared for display. ImageFile is the
// base name of the picture, empty when there is none or it is gone from disk;
// ImageURL is its escaped link.
type ProfileCard struct {
	store.DatingProfile
	ImageFile string
	ImageURL  string
}

type DatingService struct {
	dbStore  *store.SQLiteStore
	imageDir string
	metrics  *metrics.Metrics
}

func NewDatingService(db *store.SQLiteStore, imageDir string, m *metrics.Metrics) *DatingService {
	return &DatingService{dbStore: db, imageDir: imageDir, metrics: m}
}

func (s *DatingService) ImageDir() string {
	return s.imageDir
}

// SaveProfile replaces the profile of userID. A submission without an image
// clears the stored image path.
func (s *DatingService) SaveProfile(userID string, form ProfileForm, image *ImageUpload) (*store.DatingProfile, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Interest = strings.TrimSpace(form.Interest)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var imagePath *string
	if image != nil && image.Filename != "" {
		path, err := s.storeImage(userID, image)
		if err != nil {
			return nil, err
		}
		imagePath = &path
	}

	profile := store.DatingProfile{
		UserID:      userID,
		Name:        form.Name,
		Interest:    form.Interest,
		Description: form.Description,
		ImagePath:   imagePath,
	}
	if err := s.dbStore.UpsertDatingProfile(&profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	s.metrics.DatingProfiles.Inc()
	return &profile, nil
}

// storeImage writes the upload as <imageDir>/<userID>_<filename>, overwriting
// any earlier file of the same name.
func (s *DatingService) storeImage(userID string, image *ImageUpload) (string, error) {
	base := filepath.Base(filepath.Clean("/" + image.Filename))
	if !allowedImageExts[strings.ToLower(filepath.Ext(base))] {
		return "", ErrUnsupportedImage
	}

	if err := os.MkdirAll(s.imageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	path := filepath.Join(s.imageDir, userID+"_"+base)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, image.Content); err != nil {
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			log.WithField("path", path).Warnf("Failed to remove partial image: %v", rmErr)
		}
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return path, nil
}

// OwnProfile returns the stored profile of userID, or nil when there is none.
func (s *DatingService) OwnProfile(userID string) (*store.DatingProfile, error) {
	profile, err := s.dbStore.GetDatingProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch own profile: %w", err)
	}
	return profile, nil
}

// OtherProfiles lists the most recent profiles not owned by userID.
func (s *DatingService) OtherProfiles(userID string) ([]ProfileCard, error) {
	profiles, err := s.dbStore.GetOtherDatingProfiles(userID, otherProfilesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	cards := make([]ProfileCard, 0, len(profiles))
	for _, p := range profiles {
		card := ProfileCard{DatingProfile: p}
		if p.ImagePath != nil && *p.ImagePath != "" {
			if _, err := os.Stat(*p.ImagePath); err == nil {
				card.ImageFile = filepath.Base(*p.ImagePath)
				card.ImageURL = ImageURLPrefix + url.PathEscape(card.ImageFile)
			} else {
				log.WithFields(log.Fields{"user": p.UserID, "path": *p.ImagePath}).Debug("Profile image missing on disk")
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}
