// Package board implements the moderation, reaction and poll rules over the
// item store. Every mutation is a read-modify-write against the store; a
// single mutex serializes them so concurrent requests cannot lose updates.
package board

import (
	"context"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"laughschool/ledger"
	"laughschool/media"
	"laughschool/models"
	"laughschool/store"
)

// Service owns the item lifecycle: submitted items start unapproved, the
// admin approves/edits/deletes them, viewers react and vote.
type Service struct {
	mu     sync.Mutex
	store  store.Store
	ledger ledger.Ledger
	media  media.Storage
	now    func() time.Time
}

// New wires the engine to its collaborators.
func New(st store.Store, lg ledger.Ledger, md media.Storage) *Service {
	return &Service{store: st, ledger: lg, media: md, now: time.Now}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// UploadDraft is a media submission before it is stored.
type UploadDraft struct {
	Title   string
	Caption string
	Content io.Reader
}

// SubmitUpload validates the draft, stores its content with the media
// collaborator and creates an unapproved image or video item.
func (s *Service) SubmitUpload(ctx context.Context, d UploadDraft) (models.Item, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return models.Item{}, validationErr("title is required")
	}
	if d.Content == nil {
		return models.Item{}, validationErr("no media file provided")
	}

	stored, err := s.media.Store(ctx, d.Content)
	if err != nil {
		return models.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.Item{
		ID:        uuid.NewString(),
		Type:      stored.Kind,
		Title:     title,
		CreatedAt: s.timestamp(),
		Approved:  false,
		Laughs:    0,
		Media: &models.Media{
			Caption:     strings.TrimSpace(d.Caption),
			Ref:         stored.Ref,
			URL:         stored.URL,
			ContentType: stored.ContentType,
		},
	}
	if err := s.store.Put(ctx, item); err != nil {
		// The item never made it into the store; don't leak the upload.
		if relErr := s.media.Release(ctx, stored.Ref); relErr != nil {
			log.Printf("release media %s after failed put: %v", stored.Ref, relErr)
		}
		return models.Item{}, err
	}
	return item, nil
}

// CreatePoll validates and creates an unapproved poll item. The question
// falls back to the title when blank; options need at least two non-empty
// texts after trimming.
func (s *Service) CreatePoll(ctx context.Context, title, question string, options []string) (models.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Item{}, validationErr("title is required")
	}

	opts := make([]models.Option, 0, len(options))
	for _, text := range options {
		if text = strings.TrimSpace(text); text != "" {
			opts = append(opts, models.Option{Text: text, Votes: 0})
		}
	}
	if len(opts) < 2 {
		return models.Item{}, validationErr("a poll needs at least two options")
	}

	question = strings.TrimSpace(question)
	if question == "" {
		question = title
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.Item{
		ID:        uuid.NewString(),
		Type:      models.TypePoll,
		Title:     title,
		CreatedAt: s.timestamp(),
		Approved:  false,
		Laughs:    0,
		Poll: &models.Poll{
			Question:   question,
			Options:    opts,
			TotalVotes: 0,
		},
	}
	if err := s.store.Put(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Get returns any item by raw id, approved or not.
func (s *Service) Get(ctx context.Context, id string) (models.Item, error) {
	return s.store.Get(ctx, id)
}

// All returns every item for the admin dashboard, newest first.
func (s *Service) All(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByCreatedDesc(items)
	return items, nil
}

// Feed projects the public view: approved items only, newest first.
func (s *Service) Feed(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	feed := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.Approved {
			feed = append(feed, it)
		}
	}
	sortByCreatedDesc(feed)
	return feed, nil
}

// SetApproval toggles feed visibility. Idempotent.
func (s *Service) SetApproval(ctx context.Context, id string, approved bool) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	item.Approved = approved
	if err := s.store.Put(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// EditPatch names the mutable text fields. Nil fields are left untouched.
// Option texts replace positionally: extra texts append fresh options,
// fewer texts drop trailing options; surviving vote counts are kept.
type EditPatch struct {
	Title       *string
	Caption     *string
	OptionTexts []string
}

// Edit updates mutable text fields in place. Id, type, createdAt, approval
// and vote counts never change here.
func (s *Service) Edit(ctx context.Context, id string, patch EditPatch) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Item{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Item{}, validationErr("title cannot be empty")
		}
		item.Title = title
	}

	switch item.Type {
	case models.TypeImage, models.TypeVideo:
		if patch.Caption != nil {
			item.Media.Caption = strings.TrimSpace(*patch.Caption)
		}
	case models.TypePoll:
		if patch.OptionTexts != nil {
			next := make([]models.Option, len(patch.OptionTexts))
			for i, text := range patch.OptionTexts {
				next[i] = models.Option{Text: strings.TrimSpace(text)}
				if i < len(item.Poll.Options) {
					next[i].Votes = item.Poll.Options[i].Votes
				}
			}
			item.Poll.Options = next
			total := 0
			for _, o := range next {
				total += o.Votes
			}
			item.Poll.TotalVotes = total
		}
	}

	if err := s.store.Put(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Delete removes the item and releases its stored media. Deleting an
// absent id is a no-op, which keeps the admin dashboard simple.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if item.Media != nil && item.Media.Ref != "" {
		if err := s.media.Release(ctx, item.Media.Ref); err != nil {
			// Losing an orphan file is not worth failing the delete.
			log.Printf("release media %s: %v", item.Media.Ref, err)
		}
	}
	return nil
}

// React increments the laugh counter and returns the new count. Reactions
// are unlimited per viewer and work on unapproved items too; only polls
// dedup per viewer.
func (s *Service) React(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	item.Laughs++
	if err := s.store.Put(ctx, item); err != nil {
		return 0, err
	}
	return item.Laughs, nil
}

// Vote records one vote by viewerID on the poll. The ledger is checked
// before any counter moves, so a repeat vote from the same viewer is a
// no-op: counted is false and no count changes.
func (s *Service) Vote(ctx context.Context, viewerID, pollID string, optionIndex int) (item models.Item, counted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err = s.store.Get(ctx, pollID)
	if err != nil {
		return models.Item{}, false, err
	}
	if item.Type != models.TypePoll {
		return models.Item{}, false, store.ErrNotFound
	}
	if optionIndex < 0 || optionIndex >= len(item.Poll.Options) {
		return models.Item{}, false, ErrIndexOutOfRange
	}

	if _, voted, err := s.ledger.Choice(ctx, viewerID, pollID); err != nil {
		return models.Item{}, false, err
	} else if voted {
		return item, false, nil
	}

	item.Poll.Options[optionIndex].Votes++
	item.Poll.TotalVotes++
	if err := s.store.Put(ctx, item); err != nil {
		return models.Item{}, false, err
	}
	if err := s.ledger.Record(ctx, viewerID, pollID, optionIndex); err != nil {
		// The count is already durable; a lost ledger entry only risks
		// letting this viewer vote again.
		log.Printf("record vote for poll %s: %v", pollID, err)
	}
	return item, true, nil
}

// ResetVotes zeroes every option of one poll atomically. The vote ledger
// is deliberately left alone: viewers who already voted stay blocked.
func (s *Service) ResetVotes(ctx context.Context, pollID string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, pollID)
	if err != nil {
		return models.Item{}, err
	}
	if item.Type != models.TypePoll {
		return models.Item{}, ErrNotPoll
	}
	for i := range item.Poll.Options {
		item.Poll.Options[i].Votes = 0
	}
	item.Poll.TotalVotes = 0
	if err := s.store.Put(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// sortByCreatedDesc orders items newest first. CreatedAt is RFC3339 UTC,
// so plain string comparison is chronological; the sort is stable so equal
// timestamps keep their storage order.
func sortByCreatedDesc(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
}
