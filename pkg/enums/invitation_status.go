package enums

// InvitationStatus is the referral invitation state. REDEEMED and EXPIRED are terminal.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusRedeemed InvitationStatus = "REDEEMED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
	InvitationStatusCanceled InvitationStatus = "CANCELED"
)

var invitationStatuses = valueSet[InvitationStatus]{
	InvitationStatusPending,
	InvitationStatusRedeemed,
	InvitationStatusExpired,
	InvitationStatusCanceled,
}

func (s InvitationStatus) String() string { return string(s) }

func (s InvitationStatus) IsValid() bool { return invitationStatuses.contains(s) }

// IsTerminal reports whether no further transition is allowed.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationStatusRedeemed || s == InvitationStatusExpired
}

func ParseInvitationStatus(value string) (InvitationStatus, error) {
	return invitationStatuses.parse("invitation status", value)
}
