package comments

// Outranks reports whether a should be preferred over b as a post's top comment.
// More likes wins; ties go to the earlier comment, then to the lower id so the
// order is total and every store agrees on it.
func Outranks(a, b *Comment) bool {
	if a.Likes != b.Likes {
		return a.Likes > b.Likes
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// TopComment returns the highest ranked comment in list, or nil for an empty list
func TopComment(list []*Comment) *Comment {
	var top *Comment
	for _, c := range list {
		if top == nil || Outranks(c, top) {
			top = c
		}
	}
	return top
}

// TopByPost groups comments by post and keeps the highest ranked one per post
func TopByPost(list []*Comment) map[string]*Comment {
	result := make(map[string]*Comment)
	for _, c := range list {
		if cur, ok := result[c.PostID]; !ok || Outranks(c, cur) {
			result[c.PostID] = c
		}
	}
	return result
}

// BuildThread arranges a post's comments into a reply tree.
// list must be in creation order; replies whose parent is missing are
// attached at the top level so nothing is dropped.
func BuildThread(list []*Comment) []*ThreadNode {
	nodes := make(map[string]*ThreadNode, len(list))
	for _, c := range list {
		nodes[c.ID] = &ThreadNode{Comment: c, Replies: []*ThreadNode{}}
	}

	roots := make([]*ThreadNode, 0)
	for _, c := range list {
		node := nodes[c.ID]
		if c.ParentCommentID != nil {
			if parent, ok := nodes[*c.ParentCommentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
