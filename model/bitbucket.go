package model

import "time"

// BitbucketIssue is an issue in a Bitbucket repository's tracker.
type BitbucketIssue struct {
	ID        int           `json:"id"`
	Site      BitbucketSite `json:"site"`
	Title     string        `json:"title"`
	Content   Content       `json:"content"`
	State     string        `json:"state"`
	Kind      string        `json:"kind"`
	Priority  string        `json:"priority"`
	Assignee  *User         `json:"assignee,omitempty"`
	Reporter  *User         `json:"reporter,omitempty"`
	Watchers  int           `json:"watchers"`
	Votes     int           `json:"votes"`
	URL       string        `json:"url"`
	CreatedOn time.Time     `json:"createdOn"`
	UpdatedOn time.Time     `json:"updatedOn"`
}

// Content is a markup body in raw and rendered form.
type Content struct {
	Raw  string `json:"raw"`
	HTML string `json:"html"`
}

// CommentInline anchors a comment to lines of a file in a diff.
type CommentInline struct {
	Path string `json:"path"`
	From *int   `json:"from,omitempty"`
	To   *int   `json:"to,omitempty"`
}

// Comment is a pull request or issue comment. Children holds replies.
type Comment struct {
	ID        int            `json:"id"`
	ParentID  *int           `json:"parentId,omitempty"`
	Content   Content        `json:"content"`
	User      User           `json:"user"`
	Inline    *CommentInline `json:"inline,omitempty"`
	Tasks     []Task         `json:"tasks"`
	Children  []Comment      `json:"children"`
	Deleted   bool           `json:"deleted"`
	Editable  bool           `json:"editable"`
	Deletable bool           `json:"deletable"`
	CreatedOn time.Time      `json:"ts"`
	UpdatedOn time.Time      `json:"updatedTs"`
}

// Task is a checklist item attached to a pull request, optionally through a
// comment.
type Task struct {
	ID         string `json:"id"`
	CommentID  *int   `json:"commentId,omitempty"`
	Content    string `json:"content"`
	IsComplete bool   `json:"isComplete"`
	Creator    User   `json:"creator"`
	Editable   bool   `json:"editable"`
	Deletable  bool   `json:"deletable"`
}
