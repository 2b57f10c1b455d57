package domain

// CheckoutStage is the position of a single checkout run in its workflow.
type CheckoutStage string

const (
	CheckoutStageStart          CheckoutStage = "START"
	CheckoutStageValidateCart   CheckoutStage = "VALIDATE_CART"
	CheckoutStageComputeTotal   CheckoutStage = "COMPUTE_TOTAL"
	CheckoutStageProcessPayment CheckoutStage = "PROCESS_PAYMENT"
	CheckoutStagePersist        CheckoutStage = "PERSIST"
	CheckoutStageClearCart      CheckoutStage = "CLEAR_CART"
	CheckoutStageNotify         CheckoutStage = "NOTIFY"
	CheckoutStageDone           CheckoutStage = "DONE"
	CheckoutStageAborted        CheckoutStage = "ABORTED"
)

var checkoutTransitions = map[CheckoutStage][]CheckoutStage{
	CheckoutStageStart:          {CheckoutStageValidateCart},
	CheckoutStageValidateCart:   {CheckoutStageComputeTotal, CheckoutStageAborted},
	CheckoutStageComputeTotal:   {CheckoutStageProcessPayment, CheckoutStageAborted},
	CheckoutStageProcessPayment: {CheckoutStagePersist, CheckoutStageAborted},
	CheckoutStagePersist:        {CheckoutStageClearCart, CheckoutStageAborted},
	CheckoutStageClearCart:      {CheckoutStageNotify},
	CheckoutStageNotify:         {CheckoutStageDone},
}

// CanTransitionTo reports whether next directly follows s.
func (s CheckoutStage) CanTransitionTo(next CheckoutStage) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutStage) IsTerminal() bool {
	return s == CheckoutStageDone || s == CheckoutStageAborted
}

// String representation (for logging)
func (s CheckoutStage) String() string {
	return string(s)
}
