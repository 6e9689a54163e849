package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"agora/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a named, hand-written dataset. Entities reference each other
// by name instead of by ID.
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Follows  []FixtureFollow  `yaml:"follows"`
	Posts    []FixturePost    `yaml:"posts"`
	Likes    []FixtureLike    `yaml:"likes"`
	Comments []FixtureComment `yaml:"comments"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
	Picture  string `yaml:"profile_picture"`
}

type FixtureFollow struct {
	Follower  string `yaml:"follower"`
	Following string `yaml:"following"`
}

// FixturePost is created at CreatedAt, or Age before load time when
// CreatedAt is empty.
type FixturePost struct {
	Key       string    `yaml:"key"`
	Author    string    `yaml:"author"`
	Text      string    `yaml:"text"`
	Image     string    `yaml:"image"`
	CreatedAt time.Time `yaml:"created_at"`
	Age       string    `yaml:"age"`
}

type FixtureLike struct {
	User string `yaml:"user"`
	Post string `yaml:"post"`
}

type FixtureComment struct {
	User      string    `yaml:"user"`
	Post      string    `yaml:"post"`
	Text      string    `yaml:"text"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Loaded maps fixture names to the persisted rows.
type Loaded struct {
	Users map[string]*models.User
	Posts map[string]*models.Post
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// LoadFixtureFile parses the YAML file at path and loads it into db.
func LoadFixtureFile(db *gorm.DB, path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fx, err := ParseFixture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return LoadFixture(db, fx)
}

// LoadFixture inserts fx in one transaction. Passwords default to
// DefaultPassword and are hashed at bcrypt.MinCost.
func LoadFixture(db *gorm.DB, fx *Fixture) (*Loaded, error) {
	out := &Loaded{
		Users: make(map[string]*models.User, len(fx.Users)),
		Posts: make(map[string]*models.Post, len(fx.Posts)),
	}
	now := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, fu := range fx.Users {
			password := fu.Password
			if password == "" {
				password = DefaultPassword
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				return err
			}
			email := fu.Email
			if email == "" {
				email = fu.Username + "@example.com"
			}
			u := &models.User{
				Username:       fu.Username,
				Email:          email,
				Password:       string(hashed),
				Bio:            fu.Bio,
				ProfilePicture: fu.Picture,
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("user %s: %w", fu.Username, err)
			}
			out.Users[fu.Username] = u
		}

		for _, ff := range fx.Follows {
			follower, err := out.user(ff.Follower)
			if err != nil {
				return err
			}
			following, err := out.user(ff.Following)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error; err != nil {
				return fmt.Errorf("follow %s -> %s: %w", ff.Follower, ff.Following, err)
			}
		}

		for _, fp := range fx.Posts {
			author, err := out.user(fp.Author)
			if err != nil {
				return err
			}
			created := fp.CreatedAt
			if created.IsZero() {
				age := time.Duration(0)
				if fp.Age != "" {
					if age, err = time.ParseDuration(fp.Age); err != nil {
						return fmt.Errorf("post %s: %w", fp.Key, err)
					}
				}
				created = now.Add(-age)
			}
			p := &models.Post{
				UserID:    author.ID,
				Text:      fp.Text,
				Image:     fp.Image,
				CreatedAt: created.UTC(),
				UpdatedAt: created.UTC(),
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("post %s: %w", fp.Key, err)
			}
			out.Posts[fp.Key] = p
		}

		for _, fl := range fx.Likes {
			u, err := out.user(fl.User)
			if err != nil {
				return err
			}
			p, err := out.post(fl.Post)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Like{PostID: p.ID, UserID: u.ID}).Error; err != nil {
				return fmt.Errorf("like %s/%s: %w", fl.User, fl.Post, err)
			}
		}

		for _, fc := range fx.Comments {
			u, err := out.user(fc.User)
			if err != nil {
				return err
			}
			p, err := out.post(fc.Post)
			if err != nil {
				return err
			}
			c := &models.Comment{PostID: p.ID, UserID: u.ID, Text: fc.Text, CreatedAt: fc.CreatedAt.UTC()}
			if fc.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("comment on %s: %w", fc.Post, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loaded) user(name string) (*models.User, error) {
	u, ok := l.Users[name]
	if !ok {
		return nil, fmt.Errorf("fixture references unknown user %q", name)
	}
	return u, nil
}

func (l *Loaded) post(key string) (*models.Post, error) {
	p, ok := l.Posts[key]
	if !ok {
		return nil, fmt.Errorf("fixture references unknown post %q", key)
	}
	return p, nil
}
