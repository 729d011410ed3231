package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PayrollRepo is the SQL implementation of PayrollRepository. Decimal
// values are stored as text and re-parsed on scan; arithmetic only ever
// happens in Go on decimal.Decimal.
type PayrollRepo struct {
	DB *sql.DB
}

// NewPayrollRepo creates a new instance.
func NewPayrollRepo(db *sql.DB) PayrollRepository {
	return &PayrollRepo{DB: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetPayroll returns the payroll with its lines for (employee, year,
// month), or nil when none has been generated yet.
func (r *PayrollRepo) GetPayroll(ctx context.Context, employeeID string, year, month int) (*model.Payroll, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	query := `SELECT id, employee_id, year, month, status, total, email_status, email_retry_count
              FROM payrolls
              WHERE employee_id = $1 AND year = $2 AND month = $3`

	p, err := scanPayroll(r.DB.QueryRowContext(ctx, query, employeeID, year, month))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Lines, err = loadLines(ctx, r.DB, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPayrollByID returns the payroll with its lines.
func (r *PayrollRepo) GetPayrollByID(ctx context.Context, id int64) (*model.Payroll, error) {
	query := `SELECT id, employee_id, year, month, status, total, email_status, email_retry_count
              FROM payrolls WHERE id = $1`

	p, err := scanPayroll(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Lines, err = loadLines(ctx, r.DB, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertGenerated runs the whole per-employee merge as one transaction:
// a missing payroll is created in Draft with all candidate lines; a Draft
// payroll has its non-overridden lines replaced by concept code, manual
// overrides kept as they are; a Closed payroll is left untouched. The
// total is recomputed over every line before commit.
func (r *PayrollRepo) UpsertGenerated(ctx context.Context, employeeID string, year, month int, candidates []model.PayrollLine) (*model.Payroll, model.GenerationOutcome, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	p, err := scanPayroll(tx.QueryRowContext(ctx,
		`SELECT id, employee_id, year, month, status, total, email_status, email_retry_count
         FROM payrolls
         WHERE employee_id = $1 AND year = $2 AND month = $3`,
		employeeID, year, month))

	outcome := model.OutcomeUpdated
	switch {
	case err == sql.ErrNoRows:
		outcome = model.OutcomeCreated
		p = &model.Payroll{
			EmployeeID:  employeeID,
			Year:        year,
			Month:       month,
			Status:      model.PayrollDraft,
			EmailStatus: model.StatusEmailPending,
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO payrolls (employee_id, year, month) VALUES ($1, $2, $3) RETURNING id`,
			employeeID, year, month).Scan(&p.ID)
		if err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", err
	case p.Status == model.PayrollClosed:
		// Immutable: never regenerated.
		return p, model.OutcomeSkipped, nil
	}

	existing, err := loadLines(ctx, tx, p.ID)
	if err != nil {
		return nil, "", err
	}
	overridden := make(map[string]bool, len(existing))
	present := make(map[string]int64, len(existing))
	for _, l := range existing {
		present[l.ConceptCode] = l.ID
		overridden[l.ConceptCode] = l.IsManualOverride
	}

	for _, c := range candidates {
		switch {
		case overridden[c.ConceptCode]:
			// Manual overrides are sticky; the candidate value is dropped.
			continue
		case present[c.ConceptCode] != 0:
			_, err = tx.ExecContext(ctx,
				`UPDATE payroll_lines
                 SET concept_label = $1, quantity = $2, rate = $3, amount = $4
                 WHERE id = $5`,
				c.ConceptLabel, c.Quantity.String(), c.Rate.String(), c.Amount.String(),
				present[c.ConceptCode])
		default:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO payroll_lines (payroll_id, concept_code, concept_label, quantity, rate, amount)
                 VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, c.ConceptCode, c.ConceptLabel, c.Quantity.String(), c.Rate.String(), c.Amount.String())
		}
		if err != nil {
			return nil, "", fmt.Errorf("merging line %s: %w", c.ConceptCode, err)
		}
	}

	p.Lines, err = loadLines(ctx, tx, p.ID)
	if err != nil {
		return nil, "", err
	}
	p.Total = decimal.Zero
	for _, l := range p.Lines {
		p.Total = p.Total.Add(l.Amount)
	}
	// Fresh content to notify about: reset the payslip email state.
	if _, err := tx.ExecContext(ctx,
		`UPDATE payrolls SET total = $1, email_status = $2, email_retry_count = 0 WHERE id = $3`,
		p.Total.String(), model.StatusEmailPending, p.ID); err != nil {
		return nil, "", err
	}
	p.EmailStatus = model.StatusEmailPending
	p.EmailRetryCount = 0

	if err := tx.Commit(); err != nil {
		return nil, "", err
	}
	return p, outcome, nil
}

// UpdateLine applies a manual edit: the amount becomes authoritative, the
// line is flagged as overridden, and the payroll total is recomputed, all
// in one transaction that verifies the payroll is still in Draft.
func (r *PayrollRepo) UpdateLine(ctx context.Context, lineID int64, amount decimal.Decimal, notes string) (*model.PayrollLine, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	l := &model.PayrollLine{ID: lineID}
	var quantity, rate, lineAmount string
	var status model.PayrollStatus
	err = tx.QueryRowContext(ctx,
		`SELECT l.payroll_id, l.concept_code, l.concept_label, l.quantity, l.rate,
                l.amount, l.notes, l.is_manual_override, p.status
         FROM payroll_lines l
         JOIN payrolls p ON p.id = l.payroll_id
         WHERE l.id = $1`, lineID).Scan(
		&l.PayrollID, &l.ConceptCode, &l.ConceptLabel, &quantity, &rate,
		&lineAmount, &l.Notes, &l.IsManualOverride, &status)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status == model.PayrollClosed {
		return nil, model.ErrPayrollClosed
	}
	if l.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, err
	}
	if l.Rate, err = decimal.NewFromString(rate); err != nil {
		return nil, err
	}

	l.Amount = amount
	l.Notes = notes
	l.IsManualOverride = true
	if _, err := tx.ExecContext(ctx,
		`UPDATE payroll_lines
         SET amount = $1, notes = $2, is_manual_override = TRUE
         WHERE id = $3`,
		amount.String(), notes, lineID); err != nil {
		return nil, err
	}

	if err := recomputeTotal(ctx, tx, l.PayrollID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

// ClosePayroll performs the one-way Draft -> Closed transition, checking
// the current status inside the transaction.
func (r *PayrollRepo) ClosePayroll(ctx context.Context, id int64) (*model.Payroll, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := scanPayroll(tx.QueryRowContext(ctx,
		`SELECT id, employee_id, year, month, status, total, email_status, email_retry_count
         FROM payrolls WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Status == model.PayrollClosed {
		return nil, model.ErrPayrollAlreadyClosed
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE payrolls SET status = $1, email_status = $2, email_retry_count = 0 WHERE id = $3`,
		model.PayrollClosed, model.StatusEmailPending, id); err != nil {
		return nil, err
	}
	p.Status = model.PayrollClosed
	p.EmailStatus = model.StatusEmailPending
	p.EmailRetryCount = 0

	p.Lines, err = loadLines(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateEmailStatus updates the payslip notification status and retry
// count for a payroll record.
func (r *PayrollRepo) UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, retryCount int) error {
	query := `UPDATE payrolls SET email_status = $1, email_retry_count = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, id)
	return err
}

func recomputeTotal(ctx context.Context, q querier, payrollID int64) error {
	lines, err := loadLines(ctx, q, payrollID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	_, err = q.ExecContext(ctx,
		`UPDATE payrolls SET total = $1 WHERE id = $2`, total.String(), payrollID)
	return err
}

func loadLines(ctx context.Context, q querier, payrollID int64) ([]model.PayrollLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, payroll_id, concept_code, concept_label, quantity, rate, amount, notes, is_manual_override
         FROM payroll_lines
         WHERE payroll_id = $1
         ORDER BY concept_code`, payrollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PayrollLine
	for rows.Next() {
		var l model.PayrollLine
		var quantity, rate, amount string
		if err := rows.Scan(&l.ID, &l.PayrollID, &l.ConceptCode, &l.ConceptLabel,
			&quantity, &rate, &amount, &l.Notes, &l.IsManualOverride); err != nil {
			return nil, err
		}
		if l.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, err
		}
		if l.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, err
		}
		if l.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanPayroll(row rowScanner) (*model.Payroll, error) {
	p := &model.Payroll{}
	var total string
	err := row.Scan(&p.ID, &p.EmployeeID, &p.Year, &p.Month, &p.Status, &total,
		&p.EmailStatus, &p.EmailRetryCount)
	if err != nil {
		return nil, err
	}
	p.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	return p, nil
}
