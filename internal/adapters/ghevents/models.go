package ghevents

import "time"

// Commit is a partial commit-list entry with the fields we ingest
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

// Title is the first line of the commit message
func (c Commit) Title() string {
	msg := c.Commit.Message
	for i := 0; i < len(msg); i++ {
		if msg[i] == '\n' {
			return msg[:i]
		}
	}
	return msg
}

// Body is the commit message after the first line, trimmed
func (c Commit) Body() string {
	msg := c.Commit.Message
	for i := 0; i < len(msg); i++ {
		if msg[i] == '\n' {
			body := msg[i+1:]
			for len(body) > 0 && (body[0] == '\n' || body[0] == '\r') {
				body = body[1:]
			}
			return body
		}
	}
	return ""
}

// Pull is a partial pull-request document
type Pull struct {
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	State    string    `json:"state"`
	HTMLURL  string    `json:"html_url"`
	MergedAt time.Time `json:"merged_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User     struct {
		Login string `json:"login"`
	} `json:"user"`
}

// Release is a partial release document
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}
