package lifecycle

// Phase is the current state of one liquidity-provision attempt.
type Phase string

const (
	PhaseIdle                         Phase = "Idle"
	PhaseCheckingAllowance            Phase = "CheckingAllowance"
	PhaseNeedsApproval                Phase = "NeedsApproval"
	PhaseApproving                    Phase = "Approving"
	PhaseAwaitingApprovalConfirmation Phase = "AwaitingApprovalConfirmation"
	PhaseReady                        Phase = "Ready"
	PhaseSubmitting                   Phase = "Submitting"
	PhaseAwaitingConfirmation         Phase = "AwaitingConfirmation"
	PhaseConfirmed                    Phase = "Confirmed"
	PhaseWalletNotConnected           Phase = "WalletNotConnected"
)

func (p Phase) String() string {
	return string(p)
}

// transitions lists the legal successors of each phase. Reset to Idle is
// legal from everywhere, as is parking in WalletNotConnected.
var transitions = map[Phase][]Phase{
	PhaseIdle:                         {PhaseCheckingAllowance, PhaseReady},
	PhaseCheckingAllowance:            {PhaseNeedsApproval, PhaseReady},
	PhaseNeedsApproval:                {PhaseApproving, PhaseCheckingAllowance, PhaseReady},
	PhaseApproving:                    {PhaseAwaitingApprovalConfirmation, PhaseNeedsApproval},
	PhaseAwaitingApprovalConfirmation: {PhaseReady, PhaseNeedsApproval},
	PhaseReady:                        {PhaseSubmitting, PhaseCheckingAllowance, PhaseNeedsApproval},
	PhaseSubmitting:                   {PhaseAwaitingConfirmation, PhaseReady},
	PhaseAwaitingConfirmation:         {PhaseConfirmed, PhaseReady},
	PhaseConfirmed:                    {},
	PhaseWalletNotConnected:           {PhaseCheckingAllowance, PhaseReady},
}

// canTransition reports whether from → to is a legal phase change.
func canTransition(from, to Phase) bool {
	if to == PhaseIdle || to == PhaseWalletNotConnected {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
