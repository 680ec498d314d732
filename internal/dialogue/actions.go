package dialogue

// Interaction-trail action names. The router reads the most recent action to
// keep multi-turn flows (listing selection, contact questions, slot choice)
// with the handler that started them.
const (
	actionOfferedListing = "offered_listing"
	actionJobSelected    = "job_selected"
	actionJobInfo        = "job_info"
	actionAskedName      = "asked_name"
	actionAskedLastName  = "asked_last_name"
	actionAskedPhone     = "asked_phone"
	actionOfferedDates   = "offered_dates"
	actionOfferedTimes   = "offered_times"
	actionSubmitted      = "application_submitted"
)

// fieldCount is the interaction field holding how many numbered options an
// offer listed; option values live under keys like option_1, date_2, time_3.
const fieldCount = "count"
