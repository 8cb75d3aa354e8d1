package webview

import "github.com/kastheco/atlas/model"

// SplitComments partitions comments into page comments and inline comments
// anchored to a diff. The input is not modified and order is preserved.
func SplitComments(all []model.Comment) (page, inline []model.Comment) {
	page = make([]model.Comment, 0, len(all))
	inline = make([]model.Comment, 0)
	for _, c := range all {
		if c.Inline != nil {
			inline = append(inline, c)
		} else {
			page = append(page, c)
		}
	}
	return page, inline
}

// attachTasks returns a copy of comments with each task placed on the
// comment it references, replies included.
func attachTasks(comments []model.Comment, tasks []model.Task) []model.Comment {
	byComment := make(map[int][]model.Task)
	for _, t := range tasks {
		if t.CommentID != nil {
			byComment[*t.CommentID] = append(byComment[*t.CommentID], t)
		}
	}
	var walk func([]model.Comment) []model.Comment
	walk = func(in []model.Comment) []model.Comment {
		out := make([]model.Comment, len(in))
		for i, c := range in {
			c.Tasks = byComment[c.ID]
			c.Children = walk(c.Children)
			out[i] = c
		}
		return out
	}
	return walk(comments)
}
