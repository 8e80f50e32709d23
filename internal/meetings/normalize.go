package meetings

// NormalizeMeeting flattens a raw record of either wire shape into a Meeting.
// It never fails: missing or malformed fields produce a best-effort record,
// and layout drops anything whose times still do not parse.
func NormalizeMeeting(raw RawMeeting) Meeting {
	m := Meeting{
		ID:         raw.ID,
		StartTime:  raw.StartTime,
		EndTime:    raw.EndTime,
		Notes:      raw.Notes,
		Status:     MeetingStatus(raw.Status),
		LeadID:     raw.LeadID,
		LeadName:   raw.LeadName,
		MeetingURL: raw.MeetingURL,
	}

	if m.StartTime == "" && raw.Start != nil {
		m.StartTime = providerTimeString(*raw.Start)
	}
	if m.EndTime == "" && raw.End != nil {
		m.EndTime = providerTimeString(*raw.End)
	}

	switch {
	case raw.Title != "":
		m.Title = raw.Title
	case raw.Summary != "":
		m.Title = raw.Summary
	case raw.Notes != "":
		m.Title = raw.Notes
	case raw.LeadName != "":
		m.Title = "Meeting with " + raw.LeadName
	default:
		m.Title = "Meeting"
	}

	if m.MeetingURL == "" && raw.ConferenceData != nil {
		m.MeetingURL = conferenceURL(raw.ConferenceData.EntryPoints)
	}
	if m.Status == "" {
		m.Status = MeetingStatusConfirmed
	}
	return m
}

func providerTimeString(t ProviderTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// conferenceURL prefers a video entry point, falling back to the first one
// carrying a URI.
func conferenceURL(points []EntryPoint) string {
	for _, p := range points {
		if p.EntryPointType == "video" && p.URI != "" {
			return p.URI
		}
	}
	for _, p := range points {
		if p.URI != "" {
			return p.URI
		}
	}
	return ""
}
