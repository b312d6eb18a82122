// Package kraken implements the venue.Connector capability set for
// Kraken's public WebSocket v1 API: a snapshot+delta style connector
// per spec.md §4.C that routes book pushes by the integer channel ID
// Kraken assigns at subscribe time, and remaps Kraken's asset codes
// (XBT for BTC) to the canonical pair form.
package kraken

import "strings"

// wsNameToHuman converts Kraken's wsname pair ("XBT/USD") into the
// canonical "BASE/QUOTE" form ("BTC/USD").
func wsNameToHuman(wsname string) (string, bool) {
	parts := strings.SplitN(wsname, "/", 2)
	if len(parts) != 2 {
		return "", false
	}
	return krakenToHuman(parts[0]) + "/" + krakenToHuman(parts[1]), true
}

// humanToWSName converts a canonical base/quote leg pair into the
// wsname Kraken expects in a subscribe request.
func humanToWSName(base, quote string) string {
	return humanToKraken(base) + "/" + humanToKraken(quote)
}

var krakenAssetCodes = map[string]string{"XBT": "BTC"}

func krakenToHuman(code string) string {
	if human, ok := krakenAssetCodes[code]; ok {
		return human
	}
	return code
}

func humanToKraken(code string) string {
	for k, v := range krakenAssetCodes {
		if v == code {
			return k
		}
	}
	return code
}

// subscribeRequest is the event/pair/subscription control frame Kraken
// expects on connect.
type subscribeRequest struct {
	Event        string             `json:"event"`
	Pair         []string           `json:"pair"`
	Subscription bookSubscriptionReq `json:"subscription"`
}

type bookSubscriptionReq struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// subscriptionStatus is the ack Kraken sends per pair once subscribed,
// carrying the channelID that subsequent data frames for that pair will
// be tagged with.
type subscriptionStatus struct {
	Event       string `json:"event"`
	Status      string `json:"status"`
	ChannelName string `json:"channelName"`
	ChannelID   int64  `json:"channelID"`
	Pair        string `json:"pair"`
}

// assetPairsResponse is the REST response for Kraken's tradable asset
// pair catalog, used by Discover.
type assetPairsResponse struct {
	Result map[string]assetPairInfo `json:"result"`
}

type assetPairInfo struct {
	WSName string `json:"wsname"`
}

// bookPayload is a snapshot ("as"/"bs") or update ("a"/"b") book push.
// Each level is [priceStr, volumeStr, timestampStr, ...] — only the
// first two fields are used.
type bookPayload struct {
	AskSnapshot [][]string `json:"as"`
	BidSnapshot [][]string `json:"bs"`
	AskUpdate   [][]string `json:"a"`
	BidUpdate   [][]string `json:"b"`
}

func (p bookPayload) isSnapshot() bool { return len(p.AskSnapshot) > 0 || len(p.BidSnapshot) > 0 }
func (p bookPayload) isUpdate() bool   { return len(p.AskUpdate) > 0 || len(p.BidUpdate) > 0 }
