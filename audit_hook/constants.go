package audithook

// Action constants for audit events.
const (
	// Balance actions
	ActionTokenTransferred = "token.transferred"
	ActionFeeCharged       = "fee.charged"

	// Allowance actions
	ActionAllowanceApproved = "allowance.approved"

	// Fee policy actions
	ActionFeeExcluded        = "fee.excluded"
	ActionFeeIncluded        = "fee.included"
	ActionFeeRateUpdated     = "fee.rate_updated"
	ActionFeeTreasuryUpdated = "fee.treasury_updated"

	// Access actions
	ActionOwnershipTransferred = "ownership.transferred"

	// Failures
	ActionOperationRejected = "operation.rejected"
)

// Resource constants for audit events.
const (
	ResourceAccount   = "account"
	ResourceAllowance = "allowance"
	ResourceFeePolicy = "fee_policy"
	ResourceOwnership = "ownership"
	ResourceOperation = "operation"
)

// Category constants for audit events.
const (
	CategoryTransfer  = "transfer"
	CategoryAllowance = "allowance"
	CategoryFee       = "fee"
	CategoryAccess    = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
