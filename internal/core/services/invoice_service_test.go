package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/core/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	invoiceRepo  *MockInvoiceRepository
	moveRepo     *MockMoveRepository
	companyRepo  *MockCompanyRepository
	currencyRepo *MockCurrencyRepository
	converter    *MockConverter
	now          time.Time
	rateDate     time.Time
	calls        []string
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.invoiceRepo = new(MockInvoiceRepository)
	s.moveRepo = new(MockMoveRepository)
	s.companyRepo = new(MockCompanyRepository)
	s.currencyRepo = new(MockCurrencyRepository)
	s.converter = new(MockConverter)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.rateDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.calls = nil

	s.companyRepo.On("FindCompanyByID", s.ctx, "company-1").
		Return(&domain.Company{CompanyID: "company-1", CurrencyCode: "EUR"}, nil).Maybe()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").
		Return(&domain.Currency{CurrencyCode: "EUR", Precision: 2}, nil).Maybe()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Precision: 2}, nil).Maybe()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Maybe()
}

func (s *InvoiceServiceTestSuite) service(strategy domain.TaxAmountStrategy) portssvc.InvoiceSvcFacade {
	clock := func() time.Time { return s.now }
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	amountSvc := services.NewCompanyAmountService(s.companyRepo, s.currencyRepo, s.moveRepo, s.converter,
		services.WithTaxAmountStrategy(strategy), services.WithAmountClock(clock))
	return services.NewInvoiceService(s.invoiceRepo, s.moveRepo, s.companyRepo, s.currencyRepo, amountSvc, s.converter,
		services.WithInvoiceTaxAmountStrategy(strategy),
		services.WithInvoiceClock(clock),
		services.WithIDGenerator(newID))
}

func (s *InvoiceServiceTestSuite) record(name string) func(mock.Arguments) {
	return func(mock.Arguments) { s.calls = append(s.calls, name) }
}

func (s *InvoiceServiceTestSuite) expectCommit() {
	s.invoiceRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.invoiceRepo.On("Commit", s.ctx, mock.Anything).Return(nil).Once()
}

func (s *InvoiceServiceTestSuite) expectRollback() {
	s.invoiceRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.invoiceRepo.On("Rollback", s.ctx, mock.Anything).Return(nil).Once()
}

func (s *InvoiceServiceTestSuite) expectRates() {
	s.converter.On("Compute", s.ctx, "USD", "100", "EUR", true, s.rateDate).Return(dec("90.00"), nil)
	s.converter.On("Compute", s.ctx, "USD", "20", "EUR", true, s.rateDate).Return(dec("18.00"), nil)
	s.converter.On("Compute", s.ctx, "USD", "120", "EUR", true, s.rateDate).Return(dec("108.00"), nil)
}

func (s *InvoiceServiceTestSuite) invoice(id string, invType domain.InvoiceType, state domain.InvoiceState) domain.Invoice {
	invoiceDate := s.rateDate
	return domain.Invoice{
		InvoiceID:    id,
		CompanyID:    "company-1",
		Type:         invType,
		State:        state,
		CurrencyCode: "USD",
		InvoiceDate:  &invoiceDate,
		AccountID:    "partner",
		Lines:        []domain.InvoiceLine{{InvoiceLineID: id + "-l1", InvoiceID: id, AccountID: "revenue", Amount: dec("100.00")}},
		Taxes:        []domain.InvoiceTax{{InvoiceTaxID: id + "-t1", InvoiceID: id, AccountID: "vat", Base: dec("100.00"), Amount: dec("20.00")}},
	}
}

func amountsEqual(expected domain.CompanyAmounts) any {
	return mock.MatchedBy(func(actual domain.CompanyAmounts) bool { return actual.Equal(expected) })
}

func amounts(untaxed, tax, total string) domain.CompanyAmounts {
	return domain.CompanyAmounts{Untaxed: decPtr(untaxed), Tax: decPtr(tax), Total: decPtr(total)}
}

func (s *InvoiceServiceTestSuite) TestPostInvoices_CachesFromLedgerAfterPosting() {
	s.expectCommit()
	s.expectRates()
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{draft}, nil)
	s.moveRepo.On("SaveMove", s.ctx, mock.MatchedBy(func(m domain.Move) bool {
		return m.InvoiceID == "inv-1" && m.IsBalanced() && m.CurrencyCode == "EUR"
	})).Return(nil).Run(s.record("SaveMove")).Once()
	s.invoiceRepo.On("SetInvoiceMove", s.ctx, "inv-1", mock.MatchedBy(func(id *string) bool { return id != nil })).
		Return(nil).Run(s.record("SetInvoiceMove")).Once()
	s.invoiceRepo.On("UpdateInvoiceStates", s.ctx, []string{"inv-1"}, domain.InvoiceStatePosted, "user-1", s.now).
		Return(nil).Run(s.record("UpdateInvoiceStates")).Once()
	s.moveRepo.On("SumMoveLines", s.ctx, "inv-1").Return(domain.MoveLineSums{
		InvoiceAccount: dec("108.00"),
		LineAccounts:   dec("-90.00"),
		OtherAccounts:  dec("-18.00"),
	}, nil).Run(s.record("SumMoveLines")).Once()
	s.invoiceRepo.On("WriteCompanyAmountCache", s.ctx, []string{"inv-1"}, amountsEqual(amounts("90", "18", "108"))).
		Return(nil).Run(s.record("WriteCompanyAmountCache")).Once()

	posted, err := s.service(domain.TaxAmountsLive).PostInvoices(s.ctx, []string{"inv-1"}, "user-1")

	s.Require().NoError(err)
	s.Require().Len(posted, 1)
	s.Equal(domain.InvoiceStatePosted, posted[0].State)
	s.Require().NotNil(posted[0].MoveID)
	s.True(posted[0].CompanyAmountCache.Total.Equal(dec("108")))
	s.Equal([]string{"SaveMove", "SetInvoiceMove", "UpdateInvoiceStates", "SumMoveLines", "WriteCompanyAmountCache"}, s.calls)
	s.invoiceRepo.AssertNotCalled(s.T(), "WriteTaxCompanyCache", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
	s.moveRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestPostInvoices_CachedStrategyStoresTaxAmounts() {
	s.expectCommit()
	s.expectRates()
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{draft}, nil)
	s.moveRepo.On("SaveMove", s.ctx, mock.Anything).Return(nil)
	s.invoiceRepo.On("SetInvoiceMove", s.ctx, "inv-1", mock.Anything).Return(nil)
	s.invoiceRepo.On("UpdateInvoiceStates", s.ctx, []string{"inv-1"}, domain.InvoiceStatePosted, "user-1", s.now).Return(nil)
	s.moveRepo.On("SumMoveLines", s.ctx, "inv-1").Return(domain.MoveLineSums{
		InvoiceAccount: dec("108.00"),
		LineAccounts:   dec("-90.00"),
		OtherAccounts:  dec("-18.00"),
	}, nil)
	s.invoiceRepo.On("WriteCompanyAmountCache", s.ctx, []string{"inv-1"}, mock.Anything).Return(nil)
	s.invoiceRepo.On("WriteTaxCompanyCache", s.ctx, mock.MatchedBy(func(taxes []domain.InvoiceTax) bool {
		return len(taxes) == 1 && taxes[0].InvoiceTaxID == "inv-1-t1" &&
			taxes[0].CompanyBaseCache.Equal(dec("90.00")) && taxes[0].CompanyAmountCache.Equal(dec("18.00"))
	})).Return(nil).Once()

	posted, err := s.service(domain.TaxAmountsCached).PostInvoices(s.ctx, []string{"inv-1"}, "user-1")

	s.Require().NoError(err)
	s.Require().NotNil(posted[0].Taxes[0].CompanyAmountCache)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestValidateInvoices_CachesSupplierInvoicesOnly() {
	s.expectCommit()
	s.expectRates()
	supplier := s.invoice("inv-in", domain.InvoiceTypeIn, domain.InvoiceStateDraft)
	customer := s.invoice("inv-out", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-in", "inv-out"}).
		Return([]domain.Invoice{customer, supplier}, nil)
	s.invoiceRepo.On("WriteCompanyAmountCache", s.ctx, []string{"inv-in"}, amountsEqual(amounts("90.00", "18.00", "108.00"))).
		Return(nil).Once()
	s.invoiceRepo.On("UpdateInvoiceStates", s.ctx, []string{"inv-in", "inv-out"}, domain.InvoiceStateValidated, "user-1", s.now).
		Return(nil).Once()

	validated, err := s.service(domain.TaxAmountsLive).ValidateInvoices(s.ctx, []string{"inv-in", "inv-out", "inv-in"}, "user-1")

	s.Require().NoError(err)
	s.Require().Len(validated, 2)
	s.Equal("inv-in", validated[0].InvoiceID)
	s.True(validated[0].CompanyAmountCache.Total.Equal(dec("108.00")))
	s.True(validated[1].CompanyAmountCache.IsEmpty())
	for _, inv := range validated {
		s.Equal(domain.InvoiceStateValidated, inv.State)
	}
	s.moveRepo.AssertNotCalled(s.T(), "SaveMove", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestDraftInvoices_ClearsCachesInOneWrite() {
	s.expectCommit()
	first := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStatePosted)
	first.MoveID = strPtr("move-1")
	first.CompanyAmountCache = amounts("90", "18", "108")
	first.Taxes[0].CompanyAmountCache = decPtr("18")
	second := s.invoice("inv-2", domain.InvoiceTypeIn, domain.InvoiceStateCancelled)
	second.CompanyAmountCache = amounts("0", "0", "0")
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1", "inv-2"}).
		Return([]domain.Invoice{first, second}, nil)
	s.invoiceRepo.On("WriteCompanyAmountCache", s.ctx, []string{"inv-1", "inv-2"}, domain.CompanyAmounts{}).Return(nil).Once()
	s.invoiceRepo.On("ClearTaxCompanyCache", s.ctx, []string{"inv-1", "inv-2"}).Return(nil).Once()
	s.invoiceRepo.On("SetInvoiceMove", s.ctx, "inv-1", (*string)(nil)).Return(nil).Once()
	s.moveRepo.On("DeleteMove", s.ctx, "move-1").Return(nil).Once()
	s.invoiceRepo.On("UpdateInvoiceStates", s.ctx, []string{"inv-1", "inv-2"}, domain.InvoiceStateDraft, "user-1", s.now).
		Return(nil).Once()

	drafts, err := s.service(domain.TaxAmountsLive).DraftInvoices(s.ctx, []string{"inv-1", "inv-2"}, "user-1")

	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	for _, inv := range drafts {
		s.Equal(domain.InvoiceStateDraft, inv.State)
		s.True(inv.CompanyAmountCache.IsEmpty())
		s.Nil(inv.MoveID)
		s.Nil(inv.Taxes[0].CompanyAmountCache)
	}
	s.invoiceRepo.AssertNumberOfCalls(s.T(), "WriteCompanyAmountCache", 1)
	s.invoiceRepo.AssertExpectations(s.T())
	s.moveRepo.AssertExpectations(s.T())
	s.moveRepo.AssertNotCalled(s.T(), "SumMoveLines", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestCancelInvoices_KeepsCache() {
	s.expectCommit()
	validated := s.invoice("inv-1", domain.InvoiceTypeIn, domain.InvoiceStateValidated)
	validated.CompanyAmountCache = amounts("90", "18", "108")
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{validated}, nil)
	s.invoiceRepo.On("UpdateInvoiceStates", s.ctx, []string{"inv-1"}, domain.InvoiceStateCancelled, "user-1", s.now).Return(nil).Once()

	cancelled, err := s.service(domain.TaxAmountsLive).CancelInvoices(s.ctx, []string{"inv-1"}, "user-1")

	s.Require().NoError(err)
	s.Equal(domain.InvoiceStateCancelled, cancelled[0].State)
	s.True(cancelled[0].CompanyAmountCache.Equal(amounts("90", "18", "108")))
	s.invoiceRepo.AssertNotCalled(s.T(), "WriteCompanyAmountCache", mock.Anything, mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestWorkflow_IllegalTransitionRollsBack() {
	s.expectRollback()
	posted := s.invoice("inv-1", domain.InvoiceTypeIn, domain.InvoiceStatePosted)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{posted}, nil)

	_, err := s.service(domain.TaxAmountsLive).ValidateInvoices(s.ctx, []string{"inv-1"}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorIs(err, services.ErrInvalidTransition)
	s.invoiceRepo.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertNotCalled(s.T(), "UpdateInvoiceStates", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestWorkflow_MissingInvoice() {
	s.expectRollback()
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1", "ghost"}).
		Return([]domain.Invoice{s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)}, nil)

	_, err := s.service(domain.TaxAmountsLive).CancelInvoices(s.ctx, []string{"inv-1", "ghost"}, "user-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestCreateInvoice_RoundsLinesAndStartsWithoutCache() {
	s.expectCommit()
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.InvoiceID == "id-1" &&
			inv.State == domain.InvoiceStateDraft &&
			inv.CompanyAmountCache.IsEmpty() &&
			len(inv.Lines) == 1 && inv.Lines[0].Amount.Equal(dec("100.00")) &&
			inv.Lines[0].InvoiceID == "id-1"
	})).Return(nil).Once()
	invoiceDate := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)

	created, err := s.service(domain.TaxAmountsLive).CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		CompanyID:    "company-1",
		Type:         "out",
		CurrencyCode: "USD",
		InvoiceDate:  &invoiceDate,
		AccountID:    "partner",
		Lines:        []dto.InvoiceLineRequest{{AccountID: "revenue", Quantity: dec("3"), UnitPrice: dec("33.335")}},
		Taxes:        []dto.InvoiceTaxRequest{{AccountID: "vat", Base: dec("100"), Amount: dec("20")}},
	}, "user-1")

	s.Require().NoError(err)
	s.Equal(s.rateDate, *created.InvoiceDate)
	s.Equal("user-1", created.CreatedBy)
	s.True(created.TotalAmount().Equal(dec("120.00")))
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestCreateInvoice_UnknownCurrency() {
	_, err := s.service(domain.TaxAmountsLive).CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		CompanyID:    "company-1",
		Type:         "out",
		CurrencyCode: "XXX",
		AccountID:    "partner",
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.invoiceRepo.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_DraftOnly() {
	s.expectRollback()
	posted := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStatePosted)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{posted}, nil)

	_, err := s.service(domain.TaxAmountsLive).UpdateInvoice(s.ctx, "inv-1", dto.UpdateInvoiceRequest{Description: strPtr("x")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorIs(err, services.ErrInvoiceNotDraft)
	s.invoiceRepo.AssertNotCalled(s.T(), "UpdateInvoice", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertNotCalled(s.T(), "FindInvoiceByID", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_PostedMeanwhileRollsBack() {
	s.expectRollback()
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{draft}, nil)
	s.invoiceRepo.On("UpdateInvoice", s.ctx, mock.Anything).
		Return(apperrors.NewValidationError("invoice inv-1 is no longer a draft")).Once()

	_, err := s.service(domain.TaxAmountsLive).UpdateInvoice(s.ctx, "inv-1", dto.UpdateInvoiceRequest{Description: strPtr("x")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.invoiceRepo.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_NotFound() {
	s.expectRollback()
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"ghost"}).Return([]domain.Invoice{}, nil)

	_, err := s.service(domain.TaxAmountsLive).UpdateInvoice(s.ctx, "ghost", dto.UpdateInvoiceRequest{Description: strPtr("x")}, "user-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.invoiceRepo.AssertNotCalled(s.T(), "UpdateInvoice", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_ReplacesLines() {
	s.expectCommit()
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{draft}, nil)
	s.invoiceRepo.On("UpdateInvoice", s.ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Description == "updated" && len(inv.Lines) == 2 && inv.UntaxedAmount().Equal(dec("150"))
	})).Return(nil).Once()
	lines := []dto.InvoiceLineRequest{
		{AccountID: "revenue", Quantity: dec("1"), UnitPrice: dec("100")},
		{AccountID: "revenue", Quantity: dec("2"), UnitPrice: dec("25")},
	}

	updated, err := s.service(domain.TaxAmountsLive).UpdateInvoice(s.ctx, "inv-1",
		dto.UpdateInvoiceRequest{Description: strPtr("updated"), Lines: &lines}, "user-1")

	s.Require().NoError(err)
	s.Equal("user-1", updated.LastUpdatedBy)
	s.Equal(s.now, updated.LastUpdatedAt)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_CurrencyChangeRoundsKeptLinesAndTaxes() {
	s.expectCommit()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "JPY").
		Return(&domain.Currency{CurrencyCode: "JPY", Precision: 0}, nil)
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	draft.Lines[0].Quantity = dec("1")
	draft.Lines[0].UnitPrice = dec("100.40")
	draft.Lines[0].Amount = dec("100.40")
	draft.Taxes[0].Base = dec("100.40")
	draft.Taxes[0].Amount = dec("20.60")
	s.invoiceRepo.On("FindInvoicesByIDsForUpdate", s.ctx, []string{"inv-1"}).Return([]domain.Invoice{draft}, nil)
	s.invoiceRepo.On("UpdateInvoice", s.ctx, mock.Anything).Return(nil).Once()

	updated, err := s.service(domain.TaxAmountsLive).UpdateInvoice(s.ctx, "inv-1",
		dto.UpdateInvoiceRequest{CurrencyCode: strPtr("JPY")}, "user-1")

	s.Require().NoError(err)
	s.Equal("JPY", updated.CurrencyCode)
	s.True(updated.Lines[0].Amount.Equal(dec("100")), "line %s", updated.Lines[0].Amount)
	s.True(updated.Taxes[0].Base.Equal(dec("100")), "base %s", updated.Taxes[0].Base)
	s.True(updated.Taxes[0].Amount.Equal(dec("21")), "tax %s", updated.Taxes[0].Amount)
}

func (s *InvoiceServiceTestSuite) TestCopyInvoice_HasNoCacheAndNoMove() {
	s.expectCommit()
	original := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStatePosted)
	original.MoveID = strPtr("move-1")
	original.Number = "INV/001"
	original.CompanyAmountCache = amounts("90", "18", "108")
	original.Taxes[0].CompanyBaseCache = decPtr("90")
	original.Taxes[0].CompanyAmountCache = decPtr("18")
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, "inv-1").Return(&original, nil)
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.InvoiceID != "inv-1" &&
			inv.State == domain.InvoiceStateDraft &&
			inv.MoveID == nil &&
			inv.CompanyAmountCache.IsEmpty() &&
			inv.Taxes[0].CompanyBaseCache == nil &&
			inv.Taxes[0].CompanyAmountCache == nil
	})).Return(nil).Once()

	dup, err := s.service(domain.TaxAmountsLive).CopyInvoice(s.ctx, "inv-1", "user-2")

	s.Require().NoError(err)
	s.Empty(dup.Number)
	s.Equal("user-2", dup.CreatedBy)
	s.NotNil(original.CompanyAmountCache.Total, "original is untouched")
	s.NotNil(original.Taxes[0].CompanyAmountCache)
	s.invoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestGetInvoice_UsesCachedAmounts() {
	posted := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStatePosted)
	posted.CompanyAmountCache = amounts("91", "18", "109")
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, "inv-1").Return(&posted, nil)

	invoice, valuation, err := s.service(domain.TaxAmountsLive).GetInvoice(s.ctx, "inv-1")

	s.Require().NoError(err)
	s.Equal("inv-1", invoice.InvoiceID)
	s.True(valuation.DifferentCurrencies)
	s.Equal("EUR", valuation.CompanyCurrencyCode)
	s.True(valuation.Amounts.Untaxed.Equal(dec("91")))
	s.converter.AssertNotCalled(s.T(), "Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestGetInvoice_NotFound() {
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, "ghost").Return(nil, apperrors.NewNotFoundError("invoice"))

	_, _, err := s.service(domain.TaxAmountsLive).GetInvoice(s.ctx, "ghost")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *InvoiceServiceTestSuite) TestListInvoices_ComputesMissingAmounts() {
	s.expectRates()
	cached := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateValidated)
	cached.CompanyAmountCache = amounts("0", "0", "0")
	fresh := s.invoice("inv-2", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	token := "next"
	s.invoiceRepo.On("ListInvoices", s.ctx, "company-1", 20, (*string)(nil)).
		Return([]domain.Invoice{cached, fresh}, &token, nil)

	invoices, byID, next, err := s.service(domain.TaxAmountsLive).ListInvoices(s.ctx, dto.ListInvoicesParams{CompanyID: "company-1"})

	s.Require().NoError(err)
	s.Len(invoices, 2)
	s.Equal(&token, next)
	s.True(byID["inv-1"].Total.IsZero(), "present zero is kept")
	s.True(byID["inv-2"].Total.Equal(dec("108.00")))
}

func (s *InvoiceServiceTestSuite) TestGetTaxAndLineCompanyAmounts() {
	draft := s.invoice("inv-1", domain.InvoiceTypeOut, domain.InvoiceStateDraft)
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, "inv-1").Return(&draft, nil)
	s.expectRates()
	svc := s.service(domain.TaxAmountsLive)

	_, taxes, err := svc.GetTaxCompanyAmounts(s.ctx, "inv-1")
	s.Require().NoError(err)
	s.Require().Len(taxes, 1)
	s.True(taxes[0].CompanyBase.Equal(dec("90.00")))
	s.True(taxes[0].CompanyAmount.Equal(dec("18.00")))

	_, lines, err := svc.GetLineCompanyAmounts(s.ctx, "inv-1")
	s.Require().NoError(err)
	s.True(lines["inv-1-l1"].Equal(decimal.RequireFromString("90.00")))
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
