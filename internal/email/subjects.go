package email

const (
	subjectCounterOfferProposalFmt = "Aangepast bod voor uw %s"
	subjectCounterOfferAcceptedFmt = "Bevestiging: nieuw bod voor uw %s geaccepteerd"
	subjectCounterOfferDeclinedFmt = "Bevestiging: nieuw bod voor uw %s afgewezen"
)
