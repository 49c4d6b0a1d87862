package db

import (
	"context"

	"github.com/google/uuid"
)

// Hand-written. sqlc's database/sql target would bind the uuid[] argument
// through lib/pq's pq.Array; the pgx stdlib driver encodes []uuid.UUID
// natively, so this query lives outside the generated files.

const listBidsByAuctions = `
SELECT id, auction_id, seq, bidder_id, amount, placed_at FROM auction_bids
WHERE auction_id = ANY($1::uuid[])
ORDER BY auction_id, seq
`

// ListBidsByAuctions returns the bids of every auction in auctionIDs,
// grouped by auction and in acceptance order within each.
func (q *Queries) ListBidsByAuctions(ctx context.Context, auctionIDs []uuid.UUID) ([]AuctionBid, error) {
	rows, err := q.db.QueryContext(ctx, listBidsByAuctions, auctionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuctionBid
	for rows.Next() {
		var i AuctionBid
		if err := rows.Scan(
			&i.ID,
			&i.AuctionID,
			&i.Seq,
			&i.BidderID,
			&i.Amount,
			&i.PlacedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
