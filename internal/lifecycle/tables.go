package lifecycle

// Canonical transition tables. Most instrument families share the
// Standard shape; families with extra lifecycle events extend it with
// their own edges. Terminal states never gain outgoing edges - NewTable
// panics at init if a table tries.

// Standard governs cash equities and FX spot/forward: a position forms,
// settles, and closes, with cancellation possible before settlement.
var Standard = NewTable("standard",
	[2]Status{StatusProposed, StatusFormed},
	[2]Status{StatusProposed, StatusCancelled},
	[2]Status{StatusFormed, StatusSettled},
	[2]Status{StatusFormed, StatusCancelled},
	[2]Status{StatusSettled, StatusClosed},
)

// Exercisable governs options and swaptions: a formed position can be
// exercised or expire, both of which close it without passing through
// SETTLED as a distinct state (exercise settlement is booked in the
// same event).
var Exercisable = NewTable("exercisable",
	[2]Status{StatusProposed, StatusFormed},
	[2]Status{StatusProposed, StatusCancelled},
	[2]Status{StatusFormed, StatusSettled},
	[2]Status{StatusFormed, StatusClosed},
	[2]Status{StatusFormed, StatusCancelled},
	[2]Status{StatusSettled, StatusClosed},
)

// Margined governs futures: daily variation margin does not change
// status (the position stays FORMED); only final settlement moves it
// forward.
var Margined = NewTable("margined",
	[2]Status{StatusProposed, StatusFormed},
	[2]Status{StatusProposed, StatusCancelled},
	[2]Status{StatusFormed, StatusSettled},
	[2]Status{StatusFormed, StatusCancelled},
	[2]Status{StatusSettled, StatusClosed},
)

// Credit governs CDS and IRS: a credit event or maturity can close a
// formed position directly, and scheduled coupon/premium flows leave
// the status untouched.
var Credit = NewTable("credit",
	[2]Status{StatusProposed, StatusFormed},
	[2]Status{StatusProposed, StatusCancelled},
	[2]Status{StatusFormed, StatusSettled},
	[2]Status{StatusFormed, StatusClosed},
	[2]Status{StatusFormed, StatusCancelled},
	[2]Status{StatusSettled, StatusClosed},
)

// Collateralized governs collateral holdings: a pledge forms when
// collateral is delivered and closes when it is returned. Substitution
// keeps the pledge FORMED.
var Collateralized = NewTable("collateralized",
	[2]Status{StatusProposed, StatusFormed},
	[2]Status{StatusProposed, StatusCancelled},
	[2]Status{StatusFormed, StatusClosed},
	[2]Status{StatusFormed, StatusCancelled},
)

// Tables lists every canonical table for exhaustive verification.
var Tables = []Table{Standard, Exercisable, Margined, Credit, Collateralized}
