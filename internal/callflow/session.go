package callflow

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"crm-platform/internal/campaigns"
	"crm-platform/internal/leads"
)

var (
	ErrNoLead          = errors.New("no lead loaded")
	ErrCallInProgress  = errors.New("call already in progress")
	ErrOutcomeRequired = errors.New("call outcome not selected")
	ErrCallNotStarted  = errors.New("no call started this lead cycle")
)

// followUpDelay is how long the confirmation toast stays readable before
// the session asks for the next lead.
const followUpDelay = 1500 * time.Millisecond

// Notifier receives user-facing messages from the session.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Navigator moves the user between screens.
type Navigator interface {
	ToLogin()
	ToCampaigns()
}

// Session orchestrates one agent's calling workflow for a campaign. All
// lead progression is decided server-side; the session only tracks what is
// on screen:
//
//	[no lead] --FetchNextLead ok--> [lead loaded]
//	[lead loaded] --StartCall--> [call active]
//	[call active] --EndCall--> [call ended, awaiting outcome]
//	[lead loaded|active|ended] --SubmitCallLog ok--> [no lead] (next fetch scheduled)
//	[any] --FetchNextLead 404--> [terminal]
//
// After Close, responses from in-flight requests and scheduled follow-ups
// are discarded so a dismissed session never mutates the view.
type Session struct {
	api      API
	notify   Notifier
	nav      Navigator
	clock    func() time.Time
	schedule func(d time.Duration, fn func())

	mu         sync.Mutex
	closed     bool
	terminal   bool
	campaignID string

	lead         *leads.Lead
	campaignLead *campaigns.CampaignLead

	callActive    bool
	callStartTime *time.Time
	outcome       campaigns.CallOutcome
	notes         string
}

func NewSession(campaignID string, api API, notify Notifier, nav Navigator) *Session {
	return &Session{
		api:        api,
		notify:     notify,
		nav:        nav,
		clock:      time.Now,
		campaignID: campaignID,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// FetchNextLead requests the next workable lead and resets the per-lead
// call state. Running out of leads (404) is the normal terminal condition:
// the user is informed and sent back to the campaign list.
func (s *Session) FetchNextLead(ctx context.Context) error {
	resp, err := s.api.StartCampaign(ctx, s.campaignID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.Unauthorized():
				s.notify.Error("Session expired. Please log in again.")
				s.nav.ToLogin()
			case apiErr.Status == 404:
				s.terminal = true
				s.notify.Info("No more leads available in this campaign.")
				s.nav.ToCampaigns()
			default:
				s.notify.Error(apiErr.Detail)
			}
			return err
		}
		s.notify.Error("Could not reach the server. Please try again.")
		return err
	}

	s.lead = &resp.Lead
	s.campaignLead = &resp.CampaignLead
	s.callActive = false
	s.callStartTime = nil
	s.outcome = ""
	s.notes = ""
	s.notify.Info(resp.Message)
	return nil
}

// StartCall begins the local call timer. No network effect.
func (s *Session) StartCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lead == nil {
		return ErrNoLead
	}
	if s.callActive {
		return ErrCallInProgress
	}
	now := s.clock()
	s.callActive = true
	s.callStartTime = &now
	return nil
}

// EndCall stops the active call but keeps the start time, so duration can
// still be computed at submission. Calling it when no call is active is a
// no-op.
func (s *Session) EndCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callActive = false
}

func (s *Session) SetOutcome(o campaigns.CallOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = o
}

func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

// SubmitCallLog validates the form, posts the call log and schedules the
// next-lead fetch. Validation failures surface a message and make no
// network call. Duration runs from call start to the submission instant;
// ending the call does not stop the timer.
func (s *Session) SubmitCallLog(ctx context.Context) error {
	s.mu.Lock()
	if s.outcome == "" {
		s.notify.Error("Please select a call outcome before logging.")
		s.mu.Unlock()
		return ErrOutcomeRequired
	}
	if s.callStartTime == nil {
		s.notify.Error("Please start a call before logging an outcome.")
		s.mu.Unlock()
		return ErrCallNotStarted
	}

	elapsed := s.clock().Sub(*s.callStartTime)
	req := campaigns.LogCallRequest{
		CampaignLeadID:  s.campaignLead.ID,
		Outcome:         s.outcome,
		DurationSeconds: int(math.Round(elapsed.Seconds())),
		Notes:           s.notes,
	}
	// Attempts before this submission decide the confirmation message.
	attemptsBefore := s.campaignLead.AttemptsMade
	outcome := s.outcome
	s.mu.Unlock()

	_, err := s.api.SubmitCallLog(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.Unauthorized() {
				s.notify.Error("Session expired. Please log in again.")
				s.nav.ToLogin()
				return err
			}
			// Outcome and notes stay in place so the user can retry.
			s.notify.Error(apiErr.Detail)
			return err
		}
		s.notify.Error("Could not reach the server. Please try again.")
		return err
	}

	// Only the message depends on the outcome; the follow-up fetch happens
	// either way.
	if outcome == campaigns.CallOutcomeAnswered || attemptsBefore >= 2 {
		s.notify.Success("Call logged. Moving to the next lead.")
	} else {
		s.notify.Success("Call logged. Lead rescheduled for another attempt.")
	}

	s.lead = nil
	s.campaignLead = nil
	s.callActive = false
	s.callStartTime = nil
	s.outcome = ""
	s.notes = ""

	s.schedule(followUpDelay, func() {
		s.mu.Lock()
		if s.closed || s.terminal {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		_ = s.FetchNextLead(context.Background())
	})
	return nil
}

// Close dismisses the session. Late responses and pending follow-ups are
// discarded, never applied.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

/* ===================== view accessors ===================== */

func (s *Session) Lead() *leads.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lead
}

func (s *Session) CampaignLead() *campaigns.CampaignLead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaignLead
}

func (s *Session) CallActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callActive
}

func (s *Session) Outcome() campaigns.CallOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *Session) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

func (s *Session) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}
