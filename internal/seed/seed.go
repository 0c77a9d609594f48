// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"reelroom/internal/database"
	"reelroom/internal/models"
	"reelroom/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	// NumUsers and NumPosts are generated on top of the fixtures.
	NumUsers int
	NumPosts int
	// RandSeed makes generated data reproducible. Zero picks 1.
	RandSeed int64
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Result summarizes what a Run created.
type Result struct {
	Users    []models.User
	Posts    int
	Likes    int
	Follows  int
	Comments int
}

// Seeder writes demo data through the repositories so seeded likes, follows
// and comments produce the same notifications real traffic would.
type Seeder struct {
	db      *gorm.DB
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		users:   repository.NewUserRepository(db),
		posts:   repository.NewPostRepository(db),
		follows: repository.NewFollowRepository(db),
	}
}

// ClearAll deletes every row of every persisted table, children first.
func (s *Seeder) ClearAll() error {
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	log.Println("🧹 Cleared existing data")
	return nil
}

// Run creates the fixture graph, then opts.NumUsers and opts.NumPosts of
// generated filler wired into it.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, opts Options) (*Result, error) {
	if opts.RandSeed == 0 {
		opts.RandSeed = 1
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res := &Result{}
	byName := make(map[string]*models.User)
	if fx != nil {
		if err := s.applyFixtures(ctx, fx, string(hash), byName, res); err != nil {
			return nil, err
		}
	}
	if err := s.generate(ctx, opts, string(hash), byName, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context, u *models.User, byName map[string]*models.User, res *Result) error {
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	byName[u.Username] = u
	res.Users = append(res.Users, *u)
	return nil
}

func (s *Seeder) applyFixtures(ctx context.Context, fx *Fixtures, hash string, byName map[string]*models.User, res *Result) error {
	for _, uf := range fx.Users {
		email := uf.Email
		if email == "" {
			email = uf.Username + "@reelroom.dev"
		}
		u := &models.User{
			Username:       uf.Username,
			FullName:       uf.FullName,
			Email:          email,
			Password:       hash,
			Bio:            uf.Bio,
			ProfileImg:     uf.ProfileImg,
			FavoriteGenres: uf.FavoriteGenres,
			FavoriteTitle:  uf.FavoriteTitle,
			WatchingNow:    uf.WatchingNow,
		}
		if err := s.createUser(ctx, u, byName, res); err != nil {
			return err
		}
	}

	for _, f := range fx.Follows {
		if err := s.follow(ctx, byName[f.Follower].ID, byName[f.Followed].ID, res); err != nil {
			return err
		}
	}

	for _, pf := range fx.Posts {
		post := pf.model(byName[pf.Author].ID)
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("create post by %s: %w", pf.Author, err)
		}
		res.Posts++
		for _, name := range pf.LikedBy {
			if err := s.like(ctx, byName[name].ID, post.ID, res); err != nil {
				return err
			}
		}
		for _, cf := range pf.Comments {
			if err := s.comment(ctx, byName[cf.Author].ID, post.ID, cf.Text, res); err != nil {
				return err
			}
		}
	}
	log.Printf("✓ %d fixture users, %d fixture posts", len(fx.Users), len(fx.Posts))
	return nil
}

func (s *Seeder) generate(ctx context.Context, opts Options, hash string, byName map[string]*models.User, res *Result) error {
	faker := gofakeit.New(opts.RandSeed)
	pick := func(n int) int { return faker.Number(0, n-1) }

	for i := 0; i < opts.NumUsers; i++ {
		first, last := faker.FirstName(), faker.LastName()
		username := uniqueHandle(byName, first, last)
		u := &models.User{
			Username:       username,
			FullName:       first + " " + last,
			Email:          username + "@example.com",
			Password:       hash,
			Bio:            faker.Sentence(8),
			ProfileImg:     fmt.Sprintf("https://i.pravatar.cc/300?u=%s", username),
			FavoriteGenres: faker.MovieGenre() + ", " + faker.MovieGenre(),
			FavoriteTitle:  faker.MovieName(),
			WatchingNow:    faker.MovieName(),
		}
		if err := s.createUser(ctx, u, byName, res); err != nil {
			return err
		}
	}
	if len(res.Users) < 2 {
		return nil
	}

	for _, u := range res.Users[len(res.Users)-opts.NumUsers:] {
		for n := faker.Number(1, 3); n > 0; n-- {
			target := res.Users[pick(len(res.Users))]
			if target.ID == u.ID {
				continue
			}
			if err := s.follow(ctx, u.ID, target.ID, res); err != nil {
				return err
			}
		}
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[pick(len(res.Users))]
		post := &models.Post{UserID: author.ID, PostType: models.PostTypePost, Text: faker.Sentence(14)}
		switch n := pick(10); {
		case n < 4:
			post.PostType = models.PostTypeReview
			post.Text = faker.Sentence(18)
			post.ReviewData = &models.ReviewData{
				MovieName: faker.MovieName(),
				Rating:    faker.Number(models.MinRating, models.MaxRating),
			}
		case n < 6:
			post.Img = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", faker.UUID())
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("create generated post: %w", err)
		}
		res.Posts++

		order := make([]int, len(res.Users))
		for j := range order {
			order[j] = j
		}
		faker.ShuffleInts(order)
		for _, idx := range order[:pick(min(6, len(res.Users)))] {
			if err := s.like(ctx, res.Users[idx].ID, post.ID, res); err != nil {
				return err
			}
		}
		if pick(3) == 0 {
			commenter := res.Users[pick(len(res.Users))]
			if err := s.comment(ctx, commenter.ID, post.ID, faker.Sentence(9), res); err != nil {
				return err
			}
		}
	}
	log.Printf("✓ %d generated users, %d generated posts", opts.NumUsers, opts.NumPosts)
	return nil
}

func (s *Seeder) follow(ctx context.Context, followerID, followedID uint, res *Result) error {
	following, _, err := s.follows.Toggle(ctx, followerID, followedID)
	if err != nil {
		return fmt.Errorf("follow %d -> %d: %w", followerID, followedID, err)
	}
	if following {
		res.Follows++
		return nil
	}
	// Generated graphs may pick the same edge twice; put it back.
	if _, _, err := s.follows.Toggle(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("follow %d -> %d: %w", followerID, followedID, err)
	}
	return nil
}

func (s *Seeder) like(ctx context.Context, userID, postID uint, res *Result) error {
	out, err := s.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		return fmt.Errorf("like post %d: %w", postID, err)
	}
	if out.Liked {
		res.Likes++
	}
	return nil
}

func (s *Seeder) comment(ctx context.Context, userID, postID uint, text string, res *Result) error {
	if err := s.posts.AddComment(ctx, &models.Comment{UserID: userID, PostID: postID, Text: text}); err != nil {
		return fmt.Errorf("comment on post %d: %w", postID, err)
	}
	res.Comments++
	return nil
}

// uniqueHandle builds a lowercase first.last handle that is not taken yet.
func uniqueHandle(taken map[string]*models.User, first, last string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return unicode.ToLower(r)
			}
			return -1
		}, s)
	}
	base := clean(first) + "." + clean(last)
	if base == "." {
		base = "viewer"
	}
	handle := base
	for n := 2; taken[handle] != nil; n++ {
		handle = fmt.Sprintf("%s%d", base, n)
	}
	return handle
}
