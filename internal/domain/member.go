package domain

import "time"

// Member domain model (dl_member table)
type Member struct {
	CreatedAt      time.Time  `gorm:"column:mb_created_at" json:"created_at"`
	LastSeen       *time.Time `gorm:"column:mb_last_seen" json:"last_seen,omitempty"`
	UserID         string     `gorm:"column:mb_user_id;uniqueIndex" json:"user_id"`
	Username       string     `gorm:"column:mb_username;uniqueIndex" json:"username"`
	Name           string     `gorm:"column:mb_name" json:"name"`
	Email          string     `gorm:"column:mb_email;uniqueIndex" json:"email"`
	Password       string     `gorm:"column:mb_password" json:"-"`
	Avatar         string     `gorm:"column:mb_avatar" json:"avatar,omitempty"`
	Bio            string     `gorm:"column:mb_bio" json:"bio,omitempty"`
	GithubUsername string     `gorm:"column:mb_github_username" json:"github_username,omitempty"`
	ID             int        `gorm:"column:mb_no;primaryKey;autoIncrement" json:"id"`
	IsOnline       bool       `gorm:"column:mb_is_online" json:"is_online"`
}

func (Member) TableName() string {
	return "dl_member"
}

// Info builds the denormalized profile snapshot cached on threads and requests
func (m *Member) Info() ParticipantInfo {
	return ParticipantInfo{
		Name:     m.Name,
		Username: m.Username,
		Avatar:   m.Avatar,
	}
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Avatar         string `json:"avatar,omitempty"`
	Bio            string `json:"bio,omitempty"`
	GithubUsername string `json:"github_username,omitempty"`
	ID             int    `json:"id"`
}

// ToResponse converts Member to MemberResponse
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:             m.ID,
		UserID:         m.UserID,
		Username:       m.Username,
		Name:           m.Name,
		Email:          m.Email,
		Avatar:         m.Avatar,
		Bio:            m.Bio,
		GithubUsername: m.GithubUsername,
	}
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an access/refresh token pair
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Member       *MemberResponse `json:"member,omitempty"`
}

// GithubLinkResponse reports whether a member has a linked GitHub account
type GithubLinkResponse struct {
	Linked   bool   `json:"linked"`
	Username string `json:"username,omitempty"`
}
