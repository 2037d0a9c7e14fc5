package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/buildinfo"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/report"
)

func (s *Server) healthCheck(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tally",
		"version": buildinfo.Version,
	})
}

func (s *Server) getAccounts(c *gin.Context) {
	accts, err := s.reports.Accounts(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, accts)
}

// build parses the report query and builds the package. It writes the
// error response itself and returns nil on failure.
func (s *Server) build(c *gin.Context) *report.Package {
	q, err := s.parseQuery(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil
	}
	pkg, err := s.reports.Build(c.Request.Context(), q)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return nil
	}
	return pkg
}

func (s *Server) getReport(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, pkg)
	}
}

func (s *Server) getBalances(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{"window": pkg.Window, "balances": pkg.Balances})
	}
}

func (s *Server) getTrialBalance(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{
			"window":       pkg.Window,
			"trialBalance": pkg.TrialBalance,
			"balanced":     pkg.TrialBalance.Balanced(),
		})
	}
}

func (s *Server) getIncomeStatement(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{"window": pkg.Window, "incomeStatement": pkg.Income})
	}
}

func (s *Server) getBalanceSheet(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{
			"window":       pkg.Window,
			"balanceSheet": pkg.BalanceSheet,
			"difference":   pkg.BalanceSheet.Difference(),
		})
	}
}

func (s *Server) getRetainedEarnings(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{"window": pkg.Window, "retainedEarnings": pkg.RetainedEarnings})
	}
}

func (s *Server) getRatios(c *gin.Context) {
	if pkg := s.build(c); pkg != nil {
		c.JSON(http.StatusOK, gin.H{"window": pkg.Window, "ratios": pkg.Ratios})
	}
}

func (s *Server) getLedger(c *gin.Context) {
	w, err := ledger.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	act, err := s.reports.Ledger(c.Request.Context(), c.Param("accountID"), w)
	if errors.Is(err, report.ErrUnknownAccount) {
		abort(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, act)
}

func (s *Server) parseQuery(c *gin.Context) (report.Query, error) {
	w, err := ledger.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		return report.Query{}, err
	}
	q := report.Query{Window: w, RetainedOpening: s.retainedOpening}
	if raw := c.Query("retainedOpening"); raw != "" {
		if q.RetainedOpening, err = decimal.NewFromString(raw); err != nil {
			return report.Query{}, fmt.Errorf("parsing retainedOpening %q: %w", raw, err)
		}
	}
	if raw := c.Query("dividends"); raw != "" {
		if q.Dividends, err = decimal.NewFromString(raw); err != nil {
			return report.Query{}, fmt.Errorf("parsing dividends %q: %w", raw, err)
		}
	}
	return q, nil
}

func abort(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
