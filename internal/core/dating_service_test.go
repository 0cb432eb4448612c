package core

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"happiness.app/happiness-creator/internal/metrics"
)

func newTestDating(t *testing.T) *DatingService {
	t.Helper()
	return NewDatingService(newTestStore(t), filepath.Join(t.TempDir(), "profile_pics"), metrics.NewNop())
}

func TestSaveProfileRequiresNameAndInterest(t *testing.T) {
	svc := newTestDating(t)

	_, err := svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: " "}, nil)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.SaveProfile("u1", ProfileForm{Name: "", Interest: "Wandern"}, nil)
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestSaveProfileWritesImage(t *testing.T) {
	svc := newTestDating(t)

	profile, err := svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Wandern"}, &ImageUpload{
		Filename: "../../me.PNG",
		Content:  strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.ImagePath)

	assert.Equal(t, filepath.Join(svc.ImageDir(), "u1_me.PNG"), *profile.ImagePath)
	data, err := os.ReadFile(*profile.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSaveProfileRejectsOtherImageTypes(t *testing.T) {
	svc := newTestDating(t)

	_, err := svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Wandern"}, &ImageUpload{
		Filename: "script.svg",
		Content:  strings.NewReader("<svg/>"),
	})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestSaveProfileTwiceKeepsLatest(t *testing.T) {
	svc := newTestDating(t)

	_, err := svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Wandern"}, nil)
	require.NoError(t, err)
	_, err = svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Kochen", Description: "neu hier"}, nil)
	require.NoError(t, err)

	others, err := svc.OtherProfiles("someone-else")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Kochen", others[0].Interest)
	assert.Equal(t, "neu hier", others[0].Description)
}

func TestOtherProfilesExcludeOwnAndMissingImages(t *testing.T) {
	svc := newTestDating(t)

	_, err := svc.SaveProfile("me", ProfileForm{Name: "Ich", Interest: "x"}, nil)
	require.NoError(t, err)
	withImage, err := svc.SaveProfile("a", ProfileForm{Name: "A", Interest: "x"}, &ImageUpload{Filename: "a.jpg", Content: strings.NewReader("jpg")})
	require.NoError(t, err)
	gone, err := svc.SaveProfile("b", ProfileForm{Name: "B", Interest: "x"}, &ImageUpload{Filename: "b.jpeg", Content: strings.NewReader("jpeg")})
	require.NoError(t, err)
	require.NoError(t, os.Remove(*gone.ImagePath))

	cards, err := svc.OtherProfiles("me")
	require.NoError(t, err)
	require.Len(t, cards, 2)

	byUser := map[string]ProfileCard{}
	for _, c := range cards {
		byUser[c.UserID] = c
	}
	assert.NotContains(t, byUser, "me")
	assert.Equal(t, filepath.Base(*withImage.ImagePath), byUser["a"].ImageFile)
	assert.Equal(t, "/profile_pics/a_a.jpg", byUser["a"].ImageURL)
	assert.Empty(t, byUser["b"].ImageFile)
	assert.Empty(t, byUser["b"].ImageURL)
}

func TestOtherProfilesEscapeImageURL(t *testing.T) {
	svc := newTestDating(t)

	_, err := svc.SaveProfile("a", ProfileForm{Name: "A", Interest: "x"}, &ImageUpload{Filename: "me#1 ?.png", Content: strings.NewReader("png")})
	require.NoError(t, err)

	cards, err := svc.OtherProfiles("me")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "a_me#1 ?.png", cards[0].ImageFile)
	assert.Equal(t, "/profile_pics/a_me%231%20%3F.png", cards[0].ImageURL)
}

func TestSaveProfileRemovesPartialImage(t *testing.T) {
	svc := newTestDating(t)
	errBroken := errors.New("connection reset")

	_, err := svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Wandern"}, &ImageUpload{
		Filename: "me.png",
		Content:  io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errBroken)),
	})
	require.ErrorIs(t, err, errBroken)

	_, statErr := os.Stat(filepath.Join(svc.ImageDir(), "u1_me.png"))
	assert.True(t, os.IsNotExist(statErr))

	own, err := svc.OwnProfile("u1")
	require.NoError(t, err)
	assert.Nil(t, own)
}

func TestOwnProfile(t *testing.T) {
	svc := newTestDating(t)

	own, err := svc.OwnProfile("u1")
	require.NoError(t, err)
	assert.Nil(t, own)

	_, err = svc.SaveProfile("u1", ProfileForm{Name: "Harro", Interest: "Wandern", Description: "hallo"}, nil)
	require.NoError(t, err)

	own, err = svc.OwnProfile("u1")
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.Equal(t, "Wandern", own.Interest)
	assert.Equal(t, "hallo", own.Description)
}
