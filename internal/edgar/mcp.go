package edgar

import (
	"context"
	"fmt"
)

// MCP adapter methods. These wrap the client operations in the shapes the
// MCP tools return, applying the error policy each tool promises: lookups
// by CIK never fail outright, they report found=false; the financial
// statement lookup never returns an error at all.

// SearchCompaniesMCP runs a company search for the MCP layer. Validation
// problems and an unreachable ticker index surface as tool errors.
func (c *Client) SearchCompaniesMCP(ctx context.Context, args SearchCompaniesArgs) (SearchCompaniesResult, error) {
	companies, err := c.SearchCompanies(ctx, args.Query)
	if err != nil {
		return SearchCompaniesResult{}, err
	}
	return SearchCompaniesResult{
		Companies: companies,
		Count:     len(companies),
	}, nil
}

// GetCompanyInfoMCP looks up a company for the MCP layer. Every failure,
// from a malformed CIK to an upstream outage, reads as "not found".
func (c *Client) GetCompanyInfoMCP(ctx context.Context, args GetCompanyInfoArgs) (GetCompanyInfoResult, error) {
	company, err := c.GetCompanyInfo(ctx, args.CIK)
	if err != nil {
		c.Logger.Debug("company info lookup reported not found",
			"cik", args.CIK,
			"error", err)
		return GetCompanyInfoResult{
			Found:   false,
			Message: fmt.Sprintf("No company found for CIK %q", args.CIK),
		}, nil
	}
	return GetCompanyInfoResult{
		Found:   true,
		Company: company,
	}, nil
}

// GetFilingsMCP looks up filings for the MCP layer with the same
// everything-is-not-found error policy as company info.
func (c *Client) GetFilingsMCP(ctx context.Context, args GetFilingsArgs) (GetFilingsResult, error) {
	collection, err := c.GetFilings(ctx, args.CIK, args.FormType, args.Limit)
	if err != nil {
		c.Logger.Debug("filings lookup reported not found",
			"cik", args.CIK,
			"error", err)
		return GetFilingsResult{
			Found:   false,
			Message: fmt.Sprintf("No filings found for CIK %q", args.CIK),
		}, nil
	}
	return GetFilingsResult{
		Found:   true,
		CIK:     collection.CIK,
		Company: collection.Name,
		Filings: collection.Filings,
		Count:   len(collection.Filings),
	}, nil
}

// GetFinancialStatementMCP looks up a financial concept for the MCP layer.
// The result is always populated and the error is always nil; failures are
// encoded in the result's Data map.
func (c *Client) GetFinancialStatementMCP(ctx context.Context, args GetFinancialStatementArgs) (FinancialStatementResult, error) {
	res := c.GetFinancialStatement(ctx, args.CIK, args.Concept, args.Period, args.Year)
	return *res, nil
}

// GetFilingDocumentMCP fetches a filing document for the MCP layer.
func (c *Client) GetFilingDocumentMCP(ctx context.Context, args GetFilingDocumentArgs) (FilingDocument, error) {
	doc, err := c.GetFilingDocument(ctx, args.CIK, args.AccessionNumber, args.PrimaryDocument, args.MaxLength)
	if err != nil {
		return FilingDocument{}, err
	}
	return *doc, nil
}
