package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

const splitColumns = `id, channel_id, group_id, name, total_amount, tax_amount, tip_amount,
	created_by, created_at, status`

// CreateSplit inserts a split and its items.
func (q *queries) CreateSplit(ctx context.Context, split *models.Split) error {
	if split.ID == "" {
		split.ID = newID()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = models.NowMillis()
	}
	if split.Status == "" {
		split.Status = models.SplitClaiming
	}

	query := `INSERT INTO splits (` + splitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query,
		split.ID,
		split.ChannelID,
		split.GroupID,
		split.Name,
		split.TotalAmount,
		split.TaxAmount,
		split.TipAmount,
		split.CreatedBy,
		split.CreatedAt,
		string(split.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create split: %w", err)
	}

	for i := range split.Items {
		split.Items[i].SplitID = split.ID
		if err := q.CreateSplitItem(ctx, &split.Items[i]); err != nil {
			return err
		}
	}

	return nil
}

// GetSplit retrieves a split with its items and claims.
func (q *queries) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	query := `SELECT ` + splitColumns + ` FROM splits WHERE id = ?`
	split, err := scanSplit(q.db.QueryRowContext(ctx, query, splitID))
	if isNoRows(err) {
		return nil, apperr.NotFound("split", splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	if err := q.attachItems(ctx, []*models.Split{split}, `s.id = ?`, splitID); err != nil {
		return nil, err
	}
	return split, nil
}

// ListSplitsByChannel returns a channel's splits, oldest first, with items and claims.
func (q *queries) ListSplitsByChannel(ctx context.Context, channelID string) ([]*models.Split, error) {
	query := `SELECT ` + splitColumns + ` FROM splits WHERE channel_id = ? ORDER BY created_at, id`
	rows, err := q.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	var splits []*models.Split
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating splits: %w", err)
	}

	if len(splits) == 0 {
		return splits, nil
	}
	if err := q.attachItems(ctx, splits, `s.channel_id = ?`, channelID); err != nil {
		return nil, err
	}
	return splits, nil
}

// attachItems loads the items and claims of the splits matched by where and
// appends them to the given splits. Each result set is drained before the
// next query runs.
func (q *queries) attachItems(ctx context.Context, splits []*models.Split, where string, arg any) error {
	bySplit := make(map[string]*models.Split, len(splits))
	for _, s := range splits {
		bySplit[s.ID] = s
	}

	itemRows, err := q.db.QueryContext(ctx, `
		SELECT i.id, i.split_id, i.name, i.price, i.quantity
		FROM split_items i
		JOIN splits s ON s.id = i.split_id
		WHERE `+where+`
		ORDER BY i.rowid`, arg)
	if err != nil {
		return fmt.Errorf("failed to get split items: %w", err)
	}
	var items []models.SplitItem
	for itemRows.Next() {
		var item models.SplitItem
		if err := itemRows.Scan(&item.ID, &item.SplitID, &item.Name, &item.Price, &item.Quantity); err != nil {
			itemRows.Close()
			return fmt.Errorf("failed to scan split item: %w", err)
		}
		items = append(items, item)
	}
	err = itemRows.Err()
	itemRows.Close()
	if err != nil {
		return fmt.Errorf("error iterating split items: %w", err)
	}

	claims, err := q.claimsWhere(ctx, where, arg)
	if err != nil {
		return err
	}

	for _, item := range items {
		split, ok := bySplit[item.SplitID]
		if !ok {
			continue
		}
		item.ClaimedBy = claims[item.ID]
		if item.ClaimedBy == nil {
			item.ClaimedBy = []string{}
		}
		split.Items = append(split.Items, item)
	}
	return nil
}

// claimsWhere returns item ID to claimant IDs in claim order.
func (q *queries) claimsWhere(ctx context.Context, where string, arg any) (map[string][]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.item_id, c.user_id
		FROM split_item_claims c
		JOIN split_items i ON i.id = c.item_id
		JOIN splits s ON s.id = i.split_id
		WHERE `+where+`
		ORDER BY c.claimed_at, c.rowid`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get item claims: %w", err)
	}
	defer rows.Close()

	claims := make(map[string][]string)
	for rows.Next() {
		var itemID, userID string
		if err := rows.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan item claim: %w", err)
		}
		claims[itemID] = append(claims[itemID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item claims: %w", err)
	}
	return claims, nil
}

// SetSplitStatusByChannel moves every split of a channel to status.
func (q *queries) SetSplitStatusByChannel(ctx context.Context, channelID string, status models.SplitStatus) error {
	_, err := q.db.ExecContext(ctx, `UPDATE splits SET status = ? WHERE channel_id = ?`, string(status), channelID)
	if err != nil {
		return fmt.Errorf("failed to update split status: %w", err)
	}
	return nil
}

// CreateSplitItem inserts a line item.
func (q *queries) CreateSplitItem(ctx context.Context, item *models.SplitItem) error {
	if item.ID == "" {
		item.ID = newID()
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.ClaimedBy == nil {
		item.ClaimedBy = []string{}
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO split_items (id, split_id, name, price, quantity) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.SplitID, item.Name, item.Price, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to create split item: %w", err)
	}
	return nil
}

// GetSplitItem retrieves a line item with its claims.
func (q *queries) GetSplitItem(ctx context.Context, itemID string) (*models.SplitItem, error) {
	item := &models.SplitItem{}
	err := q.db.QueryRowContext(ctx,
		`SELECT id, split_id, name, price, quantity FROM split_items WHERE id = ?`, itemID,
	).Scan(&item.ID, &item.SplitID, &item.Name, &item.Price, &item.Quantity)
	if isNoRows(err) {
		return nil, apperr.NotFound("split item", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split item: %w", err)
	}

	claims, err := q.claimsWhere(ctx, `i.id = ?`, itemID)
	if err != nil {
		return nil, err
	}
	item.ClaimedBy = claims[itemID]
	if item.ClaimedBy == nil {
		item.ClaimedBy = []string{}
	}
	return item, nil
}

// DeleteSplitItem removes a line item and its claims.
func (q *queries) DeleteSplitItem(ctx context.Context, itemID string) error {
	err := q.execOne(ctx, apperr.NotFound("split item", itemID),
		`DELETE FROM split_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete split item: %w", err)
	}
	return nil
}

// AddItemClaim records a claim and reports false when it already existed.
func (q *queries) AddItemClaim(ctx context.Context, itemID, userID string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO split_item_claims (item_id, user_id, claimed_at) VALUES (?, ?, ?)
		ON CONFLICT (item_id, user_id) DO NOTHING`,
		itemID, userID, models.NowMillis(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim item: %w", err)
	}
	return n > 0, nil
}

// RemoveItemClaim drops a claim. Removing a missing claim is not an error.
func (q *queries) RemoveItemClaim(ctx context.Context, itemID, userID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM split_item_claims WHERE item_id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to unclaim item: %w", err)
	}
	return nil
}

const balanceColumns = `id, split_id, channel_id, group_id, from_user_id, to_user_id, amount, is_paid, paid_at`

// CreateBalance inserts a settlement edge.
func (q *queries) CreateBalance(ctx context.Context, b *models.SplitBalance) error {
	if b.ID == "" {
		b.ID = newID()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO split_balances (`+balanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.SplitID, b.ChannelID, b.GroupID, b.FromUserID, b.ToUserID, b.Amount,
		boolToInt(b.IsPaid), nullableInt(b.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance: %w", err)
	}
	return nil
}

// GetBalance retrieves a settlement edge.
func (q *queries) GetBalance(ctx context.Context, balanceID string) (*models.SplitBalance, error) {
	b, err := scanBalance(q.db.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM split_balances WHERE id = ?`, balanceID))
	if isNoRows(err) {
		return nil, apperr.NotFound("balance", balanceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return b, nil
}

// ListBalancesByChannel returns the paid or unpaid edges of a channel.
func (q *queries) ListBalancesByChannel(ctx context.Context, channelID string, paid bool) ([]*models.SplitBalance, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM split_balances
		WHERE channel_id = ? AND is_paid = ?
		ORDER BY from_user_id, to_user_id, rowid`, channelID, boolToInt(paid))
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.SplitBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return balances, nil
}

// DeleteUnpaidBalancesByChannel drops the unpaid edges of a channel and
// returns how many were removed.
func (q *queries) DeleteUnpaidBalancesByChannel(ctx context.Context, channelID string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM split_balances WHERE channel_id = ? AND is_paid = 0`, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete balances: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete balances: %w", err)
	}
	return n, nil
}

// MarkBalancePaid flags an edge as paid.
func (q *queries) MarkBalancePaid(ctx context.Context, balanceID string, at int64) error {
	err := q.execOne(ctx, apperr.NotFound("balance", balanceID),
		`UPDATE split_balances SET is_paid = 1, paid_at = ? WHERE id = ?`, at, balanceID)
	if err != nil {
		return fmt.Errorf("failed to mark balance paid: %w", err)
	}
	return nil
}

func scanSplit(row rowScanner) (*models.Split, error) {
	s := &models.Split{}
	var status string
	if err := row.Scan(
		&s.ID, &s.ChannelID, &s.GroupID, &s.Name, &s.TotalAmount, &s.TaxAmount, &s.TipAmount,
		&s.CreatedBy, &s.CreatedAt, &status,
	); err != nil {
		return nil, err
	}
	s.Status = models.SplitStatus(status)
	s.Items = []models.SplitItem{}
	return s, nil
}

func scanBalance(row rowScanner) (*models.SplitBalance, error) {
	b := &models.SplitBalance{}
	var (
		paid   int
		paidAt sql.NullInt64
	)
	if err := row.Scan(
		&b.ID, &b.SplitID, &b.ChannelID, &b.GroupID, &b.FromUserID, &b.ToUserID, &b.Amount,
		&paid, &paidAt,
	); err != nil {
		return nil, err
	}
	b.IsPaid = paid != 0
	b.PaidAt = paidAt.Int64
	return b, nil
}
