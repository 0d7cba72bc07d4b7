package domain

import "encoding/json"

type Maker struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Post is an upstream record. The typed fields are a best-effort view; when
// the post was decoded from upstream JSON it is marshalled back byte for byte.
type Post struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Tagline    string  `json:"tagline"`
	VotesCount int     `json:"votesCount"`
	CreatedAt  string  `json:"createdAt"`
	Website    string  `json:"website"`
	Slug       string  `json:"slug"`
	Makers     []Maker `json:"makers"`

	raw json.RawMessage
}

type postView Post

// NewPost keeps raw as-is. The returned error only reports fields that did
// not fit the typed view; the post is usable either way.
func NewPost(raw json.RawMessage) (Post, error) {
	var p Post
	err := json.Unmarshal(raw, (*postView)(&p))
	p.raw = append(json.RawMessage(nil), raw...)

	return p, err
}

func (p Post) Raw() json.RawMessage {
	return p.raw
}

func (p Post) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}

	return json.Marshal(postView(p))
}

func (p *Post) UnmarshalJSON(data []byte) error {
	decoded, err := NewPost(data)
	*p = decoded

	return err
}

// DateWindow bounds one UTC calendar day; Before is exclusive.
type DateWindow struct {
	After  string
	Before string
}

type FetchRequest struct {
	Start string
	// End defaults to Start when empty.
	End   string
	First int
}
