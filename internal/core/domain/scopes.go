package domain

// Google API OAuth scopes.
const (
	// Gmail.
	ScopeGmailReadonly = "https://www.googleapis.com/auth/gmail.readonly"
	ScopeGmailSend     = "https://www.googleapis.com/auth/gmail.send"
	ScopeGmailModify   = "https://www.googleapis.com/auth/gmail.modify"
	ScopeGmailLabels   = "https://www.googleapis.com/auth/gmail.labels"
	ScopeGmailFull     = "https://mail.google.com/"

	// Calendar.
	ScopeCalendarFull     = "https://www.googleapis.com/auth/calendar"
	ScopeCalendarEvents   = "https://www.googleapis.com/auth/calendar.events"
	ScopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"

	// Drive.
	ScopeDriveFull     = "https://www.googleapis.com/auth/drive"
	ScopeDriveFile     = "https://www.googleapis.com/auth/drive.file"
	ScopeDriveReadonly = "https://www.googleapis.com/auth/drive.readonly"
	ScopeDriveMetadata = "https://www.googleapis.com/auth/drive.metadata.readonly"

	// Sheets.
	ScopeSheetsFull     = "https://www.googleapis.com/auth/spreadsheets"
	ScopeSheetsReadonly = "https://www.googleapis.com/auth/spreadsheets.readonly"

	// User info.
	ScopeUserinfoEmail   = "https://www.googleapis.com/auth/userinfo.email"
	ScopeUserinfoProfile = "https://www.googleapis.com/auth/userinfo.profile"
)

// GmailScopes are the standard Gmail scopes for read, send, and modify.
func GmailScopes() []string {
	return []string{ScopeGmailReadonly, ScopeGmailSend, ScopeGmailModify, ScopeGmailLabels}
}

// CalendarScopes are the standard Calendar scopes.
func CalendarScopes() []string {
	return []string{ScopeCalendarFull, ScopeCalendarEvents}
}

// DriveScopes are the standard Drive scopes.
func DriveScopes() []string {
	return []string{ScopeDriveFull}
}

// SheetsScopes are the standard Sheets scopes.
func SheetsScopes() []string {
	return []string{ScopeSheetsFull}
}

// AllScopes combines the standard scopes of every supported service.
func AllScopes() []string {
	all := GmailScopes()
	all = append(all, CalendarScopes()...)
	all = append(all, DriveScopes()...)
	all = append(all, SheetsScopes()...)
	return all
}

// DefaultScopes are requested when the caller does not specify any
// (Gmail plus Calendar, matching the most common usage).
func DefaultScopes() []string {
	return append(GmailScopes(), CalendarScopes()...)
}
