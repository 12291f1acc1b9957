package models

import "math"

// ItemType tags the variant of an Item. It is immutable after creation.
type ItemType string

const (
	TypeImage ItemType = "image"
	TypeVideo ItemType = "video"
	TypePoll  ItemType = "poll"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case TypeImage, TypeVideo, TypePoll:
		return true
	}
	return false
}

// Item is a single unit of content on the board. Images, videos and polls
// share one id space and one collection. Exactly one of Media or Poll is
// set, matching Type.
type Item struct {
	ID        string   `json:"id" bson:"_id"`
	Type      ItemType `json:"type" bson:"type"`
	Title     string   `json:"title" bson:"title"`
	CreatedAt string   `json:"createdAt" bson:"createdAt"` // RFC3339 UTC; feed sorts on the raw string
	Approved  bool     `json:"approved" bson:"approved"`
	Laughs    int      `json:"laughs" bson:"laughs"`

	Media *Media `json:"media,omitempty" bson:"media,omitempty"`
	Poll  *Poll  `json:"poll,omitempty" bson:"poll,omitempty"`
}

// Media carries the variant payload for image and video items.
type Media struct {
	Caption     string `json:"caption,omitempty" bson:"caption,omitempty"`
	Ref         string `json:"ref" bson:"ref"` // opaque storage reference, used on delete
	URL         string `json:"url" bson:"url"`
	ContentType string `json:"contentType" bson:"contentType"`
}

// Poll carries the variant payload for poll items.
type Poll struct {
	Question   string   `json:"question" bson:"question"`
	Options    []Option `json:"options" bson:"options"`
	TotalVotes int      `json:"totalVotes" bson:"totalVotes"`
}

// Option is one poll choice with its running vote count.
type Option struct {
	Text  string `json:"text" bson:"text"`
	Votes int    `json:"votes" bson:"votes"`
}

// Percentages returns the vote share of every option, rounded to whole
// percent. All zeroes when nobody voted yet.
func (p *Poll) Percentages() []int {
	pcts := make([]int, len(p.Options))
	total := 0
	for _, o := range p.Options {
		total += o.Votes
	}
	if total == 0 {
		return pcts
	}
	for i, o := range p.Options {
		pcts[i] = int(math.Round(float64(o.Votes) * 100 / float64(total)))
	}
	return pcts
}
