package harness

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/booking"
	"github.com/tmorrow/greenbook/internal/ledger"
)

// UnknownEventError reports a step naming an instrument/event pair the
// dispatcher does not handle. Dispatch is an explicit switch; an
// unrecognized pair is a definite error, never a silent no-op.
type UnknownEventError struct {
	Instrument string
	Event      string
}

// Error implements the error interface.
func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("UNKNOWN_EVENT: no adapter for %s/%s", e.Instrument, e.Event)
}

// dispatch translates a scenario step into a Transaction via the
// booking adapter it names.
func dispatch(step Step) (ledger.Transaction, error) {
	key := ledger.Key(step.Key)

	switch step.Instrument {
	case "equity":
		switch step.Event {
		case "trade":
			terms, err := equityTermsOf(step)
			if err != nil {
				return ledger.Transaction{}, err
			}
			buyer, seller, err := step.legPair("buyer", "seller")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookEquityTrade(terms, buyer, seller, key)
		}

	case "option":
		terms, err := optionTermsOf(step)
		if err != nil {
			return ledger.Transaction{}, err
		}
		holder, writer, err := step.legPair("holder", "writer")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "premium":
			premium, err := step.attested("premium")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookOptionPremium(terms, premium, holder, writer, key)
		case "exercise":
			settlement, err := step.settlement("settlement_price")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookOptionExercise(terms, settlement, holder, writer, key)
		case "expiry":
			return booking.BookOptionExpiry(terms, holder, writer, key)
		}

	case "future":
		terms, err := futureTermsOf(step)
		if err != nil {
			return ledger.Transaction{}, err
		}
		long, short, err := step.legPair("long", "short")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "trade":
			return booking.BookFutureTrade(terms, long, short, key)
		case "variation_margin":
			delta, err := step.attested("price_delta")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookVariationMargin(terms, delta, long, short, key)
		case "final_settlement":
			delta, err := step.attested("final_delta")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookFutureFinalSettlement(terms, delta, long, short, key)
		}

	case "fx":
		buyer, seller, err := step.fxPair("buyer", "seller")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "spot", "forward":
			deal, err := fxDealOf(step)
			if err != nil {
				return ledger.Transaction{}, err
			}
			if step.Event == "spot" {
				return booking.BookFXSpot(deal, buyer, seller, key)
			}
			return booking.BookFXForward(deal, buyer, seller, key)
		case "ndf_settlement":
			terms, err := ndfTermsOf(step)
			if err != nil {
				return ledger.Transaction{}, err
			}
			fixing, err := step.attested("fixing")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookNDFSettlement(terms, fixing, buyer, seller, key)
		}

	case "irs":
		terms, err := irsTermsOf(step)
		if err != nil {
			return ledger.Transaction{}, err
		}
		payer, receiver, err := step.legPair("payer", "receiver")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "trade":
			return booking.BookIRSTrade(terms, payer, receiver, key)
		case "net_coupon":
			fixing, err := step.attested("fixing")
			if err != nil {
				return ledger.Transaction{}, err
			}
			dayCount, err := step.decimal("day_count")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookIRSNetCoupon(terms, fixing, dayCount, payer, receiver, key)
		case "maturity":
			return booking.BookIRSMaturity(terms, payer, receiver, key)
		}

	case "cds":
		terms, err := cdsTermsOf(step)
		if err != nil {
			return ledger.Transaction{}, err
		}
		buyer, seller, err := step.legPair("buyer", "seller")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "trade":
			return booking.BookCDSTrade(terms, buyer, seller, key)
		case "premium":
			dayCount, err := step.decimal("day_count")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookCDSPremium(terms, dayCount, buyer, seller, key)
		case "credit_event":
			price, err := step.attested("auction_price")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookCDSCreditEvent(terms, price, buyer, seller, key)
		case "maturity":
			return booking.BookCDSMaturity(terms, buyer, seller, key)
		}

	case "swaption":
		terms, err := swaptionTermsOf(step)
		if err != nil {
			return ledger.Transaction{}, err
		}
		holder, writer, err := step.legPair("holder", "writer")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "premium":
			premium, err := step.attested("premium")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookSwaptionPremium(terms, premium, holder, writer, key)
		case "exercise":
			settlement, err := step.settlement("swap_value")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookSwaptionExercise(terms, settlement, holder, writer, key)
		case "expiry":
			return booking.BookSwaptionExpiry(terms, holder, writer, key)
		}

	case "collateral":
		pledgor, secured, err := step.custodyPair("pledgor", "secured")
		if err != nil {
			return ledger.Transaction{}, err
		}
		switch step.Event {
		case "call", "return":
			asset, err := step.unit("asset")
			if err != nil {
				return ledger.Transaction{}, err
			}
			amount, err := step.quantity("amount")
			if err != nil {
				return ledger.Transaction{}, err
			}
			if step.Event == "call" {
				return booking.BookCollateralCall(asset, amount, pledgor, secured, key)
			}
			return booking.BookCollateralReturn(asset, amount, pledgor, secured, key)
		case "substitution":
			returnAsset, err := step.unit("return_asset")
			if err != nil {
				return ledger.Transaction{}, err
			}
			returnAmount, err := step.quantity("return_amount")
			if err != nil {
				return ledger.Transaction{}, err
			}
			deliverAsset, err := step.unit("deliver_asset")
			if err != nil {
				return ledger.Transaction{}, err
			}
			deliverAmount, err := step.quantity("deliver_amount")
			if err != nil {
				return ledger.Transaction{}, err
			}
			return booking.BookCollateralSubstitution(returnAsset, returnAmount, deliverAsset, deliverAmount, pledgor, secured, key)
		}
	}

	return ledger.Transaction{}, &UnknownEventError{Instrument: step.Instrument, Event: step.Event}
}

// --- term builders ---

func equityTermsOf(step Step) (booking.EquityTrade, error) {
	security, err := step.unit("security")
	if err != nil {
		return booking.EquityTrade{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.EquityTrade{}, err
	}
	shares, err := step.quantity("shares")
	if err != nil {
		return booking.EquityTrade{}, err
	}
	price, err := step.attested("price")
	if err != nil {
		return booking.EquityTrade{}, err
	}
	return booking.EquityTrade{Security: security, Currency: currency, Shares: shares, Price: price}, nil
}

func optionTermsOf(step Step) (booking.OptionTerms, error) {
	contract, err := step.unit("contract")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	underlying, err := step.unit("underlying")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	right, err := step.str("right")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	strike, err := step.decimal("strike")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	multiplier, err := step.decimal("multiplier")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	contracts, err := step.quantity("contracts")
	if err != nil {
		return booking.OptionTerms{}, err
	}
	return booking.OptionTerms{
		Contract:   contract,
		Underlying: underlying,
		Currency:   currency,
		Right:      booking.OptionRight(right),
		Strike:     strike,
		Multiplier: multiplier,
		Contracts:  contracts,
	}, nil
}

func futureTermsOf(step Step) (booking.FutureTerms, error) {
	contract, err := step.unit("contract")
	if err != nil {
		return booking.FutureTerms{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.FutureTerms{}, err
	}
	contracts, err := step.quantity("contracts")
	if err != nil {
		return booking.FutureTerms{}, err
	}
	pointValue, err := step.decimal("point_value")
	if err != nil {
		return booking.FutureTerms{}, err
	}
	return booking.FutureTerms{Contract: contract, Currency: currency, Contracts: contracts, PointValue: pointValue}, nil
}

func fxDealOf(step Step) (booking.FXDeal, error) {
	base, err := step.unit("base")
	if err != nil {
		return booking.FXDeal{}, err
	}
	quote, err := step.unit("quote")
	if err != nil {
		return booking.FXDeal{}, err
	}
	baseAmount, err := step.quantity("base_amount")
	if err != nil {
		return booking.FXDeal{}, err
	}
	rate, err := step.attested("rate")
	if err != nil {
		return booking.FXDeal{}, err
	}
	return booking.FXDeal{Base: base, Quote: quote, BaseAmount: baseAmount, Rate: rate}, nil
}

func ndfTermsOf(step Step) (booking.NDFTerms, error) {
	base, err := step.unit("base")
	if err != nil {
		return booking.NDFTerms{}, err
	}
	quote, err := step.unit("quote")
	if err != nil {
		return booking.NDFTerms{}, err
	}
	notional, err := step.quantity("base_notional")
	if err != nil {
		return booking.NDFTerms{}, err
	}
	forwardRate, err := step.attested("forward_rate")
	if err != nil {
		return booking.NDFTerms{}, err
	}
	return booking.NDFTerms{Base: base, Quote: quote, BaseNotional: notional, ForwardRate: forwardRate}, nil
}

func irsTermsOf(step Step) (booking.IRSTerms, error) {
	contract, err := step.unit("contract")
	if err != nil {
		return booking.IRSTerms{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.IRSTerms{}, err
	}
	notional, err := step.quantity("notional")
	if err != nil {
		return booking.IRSTerms{}, err
	}
	fixedRate, err := step.decimal("fixed_rate")
	if err != nil {
		return booking.IRSTerms{}, err
	}
	return booking.IRSTerms{Contract: contract, Currency: currency, Notional: notional, FixedRate: fixedRate}, nil
}

func cdsTermsOf(step Step) (booking.CDSTerms, error) {
	contract, err := step.unit("contract")
	if err != nil {
		return booking.CDSTerms{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.CDSTerms{}, err
	}
	notional, err := step.quantity("notional")
	if err != nil {
		return booking.CDSTerms{}, err
	}
	spread, err := step.decimal("spread")
	if err != nil {
		return booking.CDSTerms{}, err
	}
	return booking.CDSTerms{Contract: contract, Currency: currency, Notional: notional, Spread: spread}, nil
}

func swaptionTermsOf(step Step) (booking.SwaptionTerms, error) {
	contract, err := step.unit("contract")
	if err != nil {
		return booking.SwaptionTerms{}, err
	}
	currency, err := step.unit("currency")
	if err != nil {
		return booking.SwaptionTerms{}, err
	}
	underlying, err := irsTermsOf(stepWithPrefix(step, "swap_"))
	if err != nil {
		return booking.SwaptionTerms{}, err
	}
	return booking.SwaptionTerms{Contract: contract, Currency: currency, Underlying: underlying}, nil
}

// stepWithPrefix exposes params carrying the given prefix under their
// bare names, so a swaption's "swap_contract" feeds the swap builder's
// "contract".
func stepWithPrefix(step Step, prefix string) Step {
	params := make(map[string]string, len(step.Params))
	for k, v := range step.Params {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			params[k[len(prefix):]] = v
		}
	}
	out := step
	out.Params = params
	return out
}

// --- step field accessors ---

func (st Step) str(name string) (string, error) {
	v, ok := st.Params[name]
	if !ok || v == "" {
		return "", fmt.Errorf("step %q missing param %q", st.Key, name)
	}
	return v, nil
}

func (st Step) unit(name string) (ledger.Unit, error) {
	v, err := st.str(name)
	if err != nil {
		return "", err
	}
	return ledger.NewUnit(v)
}

func (st Step) decimal(name string) (decimal.Decimal, error) {
	v, err := st.str(name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("step %q param %q: %w", st.Key, name, err)
	}
	return d, nil
}

func (st Step) quantity(name string) (ledger.Quantity, error) {
	d, err := st.decimal(name)
	if err != nil {
		return ledger.Quantity{}, err
	}
	return ledger.NewQuantity(d)
}

// attested reads a decimal param plus its provenance reference from
// "<name>_provenance", defaulting to a scenario-local reference.
func (st Step) attested(name string) (booking.Attested, error) {
	d, err := st.decimal(name)
	if err != nil {
		return booking.Attested{}, err
	}
	provenance := st.Params[name+"_provenance"]
	if provenance == "" {
		provenance = "scenario:" + st.Key
	}
	return booking.NewAttested(d, provenance)
}

// settlement reads the cash/physical choice; cash settlements carry
// their attested price under priceParam.
func (st Step) settlement(priceParam string) (booking.Settlement, error) {
	method, err := st.str("settlement")
	if err != nil {
		return nil, err
	}
	switch method {
	case "cash":
		price, err := st.attested(priceParam)
		if err != nil {
			return nil, err
		}
		return booking.CashSettlement{Price: price}, nil
	case "physical":
		return booking.PhysicalSettlement{}, nil
	default:
		return nil, fmt.Errorf("step %q has unknown settlement %q", st.Key, method)
	}
}

func (st Step) party(role string) (string, error) {
	name, ok := st.Parties[role]
	if !ok || name == "" {
		return "", fmt.Errorf("step %q missing party %q", st.Key, role)
	}
	return name, nil
}

func (st Step) legPair(roleA, roleB string) (booking.LegAccounts, booking.LegAccounts, error) {
	a, err := st.party(roleA)
	if err != nil {
		return booking.LegAccounts{}, booking.LegAccounts{}, err
	}
	b, err := st.party(roleB)
	if err != nil {
		return booking.LegAccounts{}, booking.LegAccounts{}, err
	}
	return legsFor(a), legsFor(b), nil
}

func (st Step) fxPair(roleA, roleB string) (booking.FXAccounts, booking.FXAccounts, error) {
	a, err := st.party(roleA)
	if err != nil {
		return booking.FXAccounts{}, booking.FXAccounts{}, err
	}
	b, err := st.party(roleB)
	if err != nil {
		return booking.FXAccounts{}, booking.FXAccounts{}, err
	}
	return fxAccountsFor(a), fxAccountsFor(b), nil
}

func (st Step) custodyPair(roleA, roleB string) (booking.CollateralAccounts, booking.CollateralAccounts, error) {
	a, err := st.party(roleA)
	if err != nil {
		return booking.CollateralAccounts{}, booking.CollateralAccounts{}, err
	}
	b, err := st.party(roleB)
	if err != nil {
		return booking.CollateralAccounts{}, booking.CollateralAccounts{}, err
	}
	return booking.CollateralAccounts{Custody: accountID(a, "custody")},
		booking.CollateralAccounts{Custody: accountID(b, "custody")}, nil
}

func legsFor(name string) booking.LegAccounts {
	return booking.LegAccounts{
		Cash:       accountID(name, "cash"),
		Securities: accountID(name, "sec"),
		Position:   accountID(name, "pos"),
	}
}

func fxAccountsFor(name string) booking.FXAccounts {
	return booking.FXAccounts{
		BaseCash:  accountID(name, "base"),
		QuoteCash: accountID(name, "quote"),
	}
}

func accountID(name, leg string) ledger.AccountID {
	return ledger.AccountID("acct:" + name + ":" + leg)
}
