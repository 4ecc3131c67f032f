package main

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	defaultImageURL       = "/static/images/default-pic.png"
	defaultHeaderImageURL = "/static/images/warbler-hero.jpg"

	// maxMessageLength is enforced by the CHECK constraint on the text
	// column, so an over-long message fails when it is persisted rather
	// than when it is constructed.
	maxMessageLength = 140

	timelineLimit = 100
)

var errPasswordRequired = errors.New("password is required")

// User is a registered account.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"unique;not null"`
	Email          string `gorm:"unique;not null"`
	Password       string `gorm:"not null"`
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	CreatedAt      time.Time

	Messages []Message `gorm:"foreignKey:UserID"`
}

func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// Message is a single warble.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"not null;check:length(text) <= 140"`
	Timestamp time.Time `gorm:"not null"`
	UserID    uint      `gorm:"not null"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate fills the publication time, mirroring a column default.
func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

// Follows is a directed edge: FollowerID follows FollowedID. The composite
// primary key rules out duplicate edges; self-follows are a policy question
// left open here, as in the schema.
type Follows struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (Follows) TableName() string { return "follows" }

// Signup hashes the password and returns an unsaved User. Uniqueness of
// username and email is the database's call and surfaces when the caller
// persists the returned value.
func Signup(username, email, password, imageURL string) (*User, error) {
	if password == "" {
		return nil, errPasswordRequired
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	if imageURL == "" {
		imageURL = defaultImageURL
	}
	return &User{
		Username:       username,
		Email:          email,
		Password:       hashed,
		ImageURL:       imageURL,
		HeaderImageURL: defaultHeaderImageURL,
	}, nil
}

// Authenticate returns the matching user, or nil for an unknown username
// or a wrong password. Neither case is an error.
func Authenticate(username, password string) *User {
	var u User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil
	}
	if !checkPassword(u.Password, password) {
		return nil
	}
	return &u
}

func getUserByID(id uint) *User {
	var u User
	if err := db.First(&u, id).Error; err != nil {
		return nil
	}
	return &u
}

// searchUsers lists all users, filtered by a username substring when q is
// non-empty.
func searchUsers(q string) []User {
	var users []User
	tx := db.Order("username")
	if q != "" {
		tx = tx.Where("username LIKE ?", "%"+q+"%")
	}
	tx.Find(&users)
	return users
}

func (u *User) IsFollowing(other *User) bool {
	var n int64
	db.Model(&Follows{}).
		Where("follower_id = ? AND followed_id = ?", u.ID, other.ID).
		Count(&n)
	return n > 0
}

func (u *User) IsFollowedBy(other *User) bool {
	var n int64
	db.Model(&Follows{}).
		Where("follower_id = ? AND followed_id = ?", other.ID, u.ID).
		Count(&n)
	return n > 0
}

// Following returns the users u follows.
func (u *User) Following() []User {
	var users []User
	db.Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", u.ID).
		Order("username").
		Find(&users)
	return users
}

// Followers returns the users following u.
func (u *User) Followers() []User {
	var users []User
	db.Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", u.ID).
		Order("username").
		Find(&users)
	return users
}

// timelineFor returns the newest messages by the user and everyone they
// follow.
func timelineFor(u *User) []Message {
	var followedIDs []uint
	db.Model(&Follows{}).Where("follower_id = ?", u.ID).Pluck("followed_id", &followedIDs)
	ids := append(followedIDs, u.ID)

	var msgs []Message
	db.Preload("User").
		Where("user_id IN ?", ids).
		Order("timestamp DESC").
		Limit(timelineLimit).
		Find(&msgs)
	return msgs
}

// messagesBy returns a user's own messages, newest first.
func messagesBy(userID uint) []Message {
	var msgs []Message
	db.Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(timelineLimit).
		Find(&msgs)
	return msgs
}
