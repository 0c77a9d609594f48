package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"reelroom/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yml
var demoFixtures []byte

// Fixtures describes a hand-written social graph. Users are referenced by
// username everywhere else in the file.
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Posts   []PostFixture   `yaml:"posts"`
	Follows []FollowFixture `yaml:"follows"`
}

type UserFixture struct {
	Username       string `yaml:"username"`
	FullName       string `yaml:"fullName"`
	Email          string `yaml:"email"`
	Bio            string `yaml:"bio"`
	ProfileImg     string `yaml:"profileImg"`
	FavoriteGenres string `yaml:"favoriteGenres"`
	FavoriteTitle  string `yaml:"favoriteTitle"`
	WatchingNow    string `yaml:"watchingNow"`
}

type PostFixture struct {
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	Img      string           `yaml:"img"`
	Review   *ReviewFixture   `yaml:"review"`
	LikedBy  []string         `yaml:"likedBy"`
	Comments []CommentFixture `yaml:"comments"`
}

type ReviewFixture struct {
	Movie    string `yaml:"movie"`
	Actor    string `yaml:"actor"`
	Director string `yaml:"director"`
	Rating   int    `yaml:"rating"`
}

type CommentFixture struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

type FollowFixture struct {
	Follower string `yaml:"follower"`
	Followed string `yaml:"followed"`
}

// DemoFixtures returns the fixtures bundled with the binary.
func DemoFixtures() (*Fixtures, error) {
	return ParseFixtures(bytes.NewReader(demoFixtures))
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseFixtures(f)
}

// ParseFixtures decodes and checks fixtures. Unknown keys are rejected so a
// typo does not silently drop data.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.check(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixtures) check() error {
	known := make(map[string]bool, len(fx.Users))
	for _, u := range fx.Users {
		if u.Username == "" || u.FullName == "" {
			return fmt.Errorf("fixture user needs username and fullName: %+v", u)
		}
		if known[u.Username] {
			return fmt.Errorf("duplicate fixture user %q", u.Username)
		}
		known[u.Username] = true
	}

	ref := func(what, name string) error {
		if !known[name] {
			return fmt.Errorf("%s references unknown user %q", what, name)
		}
		return nil
	}
	for i, p := range fx.Posts {
		if err := ref(fmt.Sprintf("post %d", i), p.Author); err != nil {
			return err
		}
		if r := p.Review; r != nil && (r.Movie == "" || r.Rating < models.MinRating || r.Rating > models.MaxRating) {
			return fmt.Errorf("post %d: review needs a movie and a rating between %d and %d", i, models.MinRating, models.MaxRating)
		}
		for _, name := range p.LikedBy {
			if err := ref(fmt.Sprintf("post %d like", i), name); err != nil {
				return err
			}
		}
		for _, c := range p.Comments {
			if err := ref(fmt.Sprintf("post %d comment", i), c.Author); err != nil {
				return err
			}
		}
	}
	for _, f := range fx.Follows {
		if err := ref("follow", f.Follower); err != nil {
			return err
		}
		if err := ref("follow", f.Followed); err != nil {
			return err
		}
		if f.Follower == f.Followed {
			return fmt.Errorf("user %q cannot follow themselves", f.Follower)
		}
	}
	return nil
}

func (p PostFixture) model(authorID uint) *models.Post {
	post := &models.Post{
		UserID:   authorID,
		Text:     p.Text,
		Img:      p.Img,
		PostType: models.PostTypePost,
	}
	if p.Review != nil {
		post.PostType = models.PostTypeReview
		post.ReviewData = &models.ReviewData{
			MovieName:    p.Review.Movie,
			ActorName:    p.Review.Actor,
			DirectorName: p.Review.Director,
			Rating:       p.Review.Rating,
		}
	}
	return post
}
