package app

// Story is an HN story item.
type Story struct {
	//ID is the item's unique id.
	ID int `json:"id"`
	//By is the username of the story's author.
	By string `json:"by"`
	//Title of the story.
	Title string `json:"title"`
	//URL of the story. Empty for text-only posts.
	URL string `json:"url"`
	//Score of the story.
	Score int `json:"score"`
	//Time is the submission time, unix seconds.
	Time int64 `json:"time"`
	//Descendants is the total comment count.
	Descendants int `json:"descendants"`
	//Kids are the ids of the story's direct comments, ranked display order.
	Kids []int `json:"kids"`
}

// Comment is one comment of a story's discussion tree.
type Comment struct {
	//ID is the item's unique id.
	ID int `json:"id"`
	//Parent is the id of the comment's parent, the story for top level comments.
	Parent int `json:"parent"`
	//By is the username of the comment's author.
	By string `json:"by"`
	//Text is the comment body, plain text.
	Text string `json:"text"`
	//Depth is 0 for direct children of the story.
	Depth int `json:"depth"`
	//Kids are the ids of the comment's replies, ranked display order.
	Kids []int `json:"kids"`
	//Dead denotes a dead or deleted comment.
	Dead bool `json:"dead"`
}

// Node is an item fetched by id, either *Story or *Comment.
type Node interface {
	ItemID() int
}

// ItemID returns the story's id.
func (s *Story) ItemID() int { return s.ID }

// ItemID returns the comment's id.
func (c *Comment) ItemID() int { return c.ID }
