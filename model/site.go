// Package model holds the Jira and Bitbucket entities that travel over the
// webview protocol. Field names follow the wire format the UI expects.
package model

import "strings"

// Product identifies which Atlassian product a site belongs to.
type Product string

const (
	ProductJira      Product = "jira"
	ProductBitbucket Product = "bitbucket"
)

// SiteInfo identifies one Jira or Bitbucket instance.
type SiteInfo struct {
	ID      string  `json:"id"`
	Host    string  `json:"host"`
	Name    string  `json:"name"`
	BaseURL string  `json:"baseLinkUrl"`
	Product Product `json:"product"`
	IsCloud bool    `json:"isCloud"`
	UserID  string  `json:"userId,omitempty"`
}

// Key is a stable identifier for a site, unique across products.
func (s SiteInfo) Key() string {
	return string(s.Product) + ":" + strings.ToLower(s.Host)
}

// AuthInfo carries credentials for a login attempt. It never leaves the host.
type AuthInfo struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	User     User   `json:"user,omitempty"`
}

// User is an account on a Jira or Bitbucket site.
type User struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Nickname    string `json:"nickname,omitempty"`
	Email       string `json:"emailAddress,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}

// BitbucketSite is a repository on a Bitbucket site.
type BitbucketSite struct {
	Details  SiteInfo `json:"details"`
	Owner    string   `json:"ownerSlug"`
	RepoSlug string   `json:"repoSlug"`
}

// FullName returns "owner/slug".
func (b BitbucketSite) FullName() string {
	return b.Owner + "/" + b.RepoSlug
}
