package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleFinanceData(w http.ResponseWriter, r *http.Request) {
	data, err := s.finance.Data(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.finance.Account(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var acct core.Account
	if err := decodeJSON(r, &acct); err != nil {
		writeError(w, r, err)
		return
	}
	uid := userID(r)
	saved, err := s.finance.UpdateAccount(r.Context(), uid, acct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.finance.ListBills(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, s.finance.GetBill)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var b core.RecurringBill
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = 0
	uid := userID(r)
	created, err := s.finance.CreateBill(r.Context(), uid, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var b core.RecurringBill
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = id
	uid := userID(r)
	updated, err := s.finance.UpdateBill(r.Context(), uid, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.finance.DeleteBill)
}

func (s *Server) handleListPaychecks(w http.ResponseWriter, r *http.Request) {
	paychecks, err := s.finance.ListPaychecks(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paychecks)
}

func (s *Server) handleGetPaycheck(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, s.finance.GetPaycheck)
}

func (s *Server) handleCreatePaycheck(w http.ResponseWriter, r *http.Request) {
	var p core.Paycheck
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = 0
	uid := userID(r)
	created, err := s.finance.CreatePaycheck(r.Context(), uid, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePaycheck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p core.Paycheck
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = id
	uid := userID(r)
	updated, err := s.finance.UpdatePaycheck(r.Context(), uid, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePaycheck(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.finance.DeletePaycheck)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.finance.ListExpenses(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, s.finance.GetExpense)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, r, err)
		return
	}
	e.ID = 0
	uid := userID(r)
	created, err := s.finance.CreateExpense(r.Context(), uid, e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var e core.Expense
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, r, err)
		return
	}
	e.ID = id
	uid := userID(r)
	updated, err := s.finance.UpdateExpense(r.Context(), uid, e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.finance.DeleteExpense)
}

func getRecord[T any](w http.ResponseWriter, r *http.Request, get func(ctx context.Context, userID, id int64) (T, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, userID, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	uid := userID(r)
	if err := del(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate(uid)
	w.WriteHeader(http.StatusNoContent)
}
