package retrieval

import (
	"context"
	"time"

	"FinSight/internal/domain/models"

	"github.com/google/uuid"
)

// seedDocs is the starter financial knowledge base indexed at boot when
// index.seed_documents is enabled.
var seedDocs = []struct {
	title    string
	category string
	text     string
}{
	{
		title:    "Market Volatility Analysis",
		category: "market_analysis",
		text:     "Market volatility refers to the rate at which stock prices increase or decrease. High volatility indicates larger price swings and higher risk. The VIX index measures market volatility and is often called the 'fear index'. During periods of high volatility, investors should consider diversification and risk management strategies.",
	},
	{
		title:    "Technical Indicators Guide",
		category: "technical_analysis",
		text:     "Moving averages smooth out price data to identify trends. The 50-day and 200-day moving averages are commonly used. When the 50-day crosses above the 200-day (golden cross), it's a bullish signal. Volume indicates trading activity and confirms price movements. High volume on price increases suggests strong buying pressure.",
	},
	{
		title:    "Risk Management Principles",
		category: "risk_management",
		text:     "Effective risk management involves portfolio diversification, position sizing, and stop-loss orders. Never risk more than 2% of your portfolio on a single trade. Diversification across sectors and asset classes reduces overall risk. Regular portfolio rebalancing maintains target allocations.",
	},
	{
		title:    "Real-Time Trading Strategies",
		category: "trading_strategies",
		text:     "Real-time data enables algorithmic trading and immediate response to market events. High-frequency trading relies on sub-second execution. Event-driven strategies react to news and earnings announcements. Momentum strategies capitalize on trending stocks with strong volume.",
	},
	{
		title:    "Anomaly Detection in Markets",
		category: "anomaly_detection",
		text:     "Unusual price movements can signal opportunities or risks. Spike in volume without price change may indicate accumulation. Sudden gaps often occur after earnings or major news. Price divergence from moving averages suggests potential reversals. Machine learning models can identify complex patterns in real-time data streams.",
	},
}

// SeedKnowledgeBase indexes the bundled starter documents.
func SeedKnowledgeBase(ctx context.Context, ix *Indexer) error {
	for _, d := range seedDocs {
		doc := models.SourceDocument{
			ID:        uuid.NewString(),
			Title:     d.title,
			Category:  d.category,
			RawText:   d.text,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := ix.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
