package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const (
	keyAttribute      = "restaurantId"
	maxBatchGetKeys   = 100
	defaultTableName  = "yelp-restaurants"
	projectionExpr    = "restaurantId, #n, address"
	nameAttributeVar  = "#n"
	nameAttributeName = "name"
)

// DynamoAPI is the subset of the DynamoDB client used here.
type DynamoAPI interface {
	BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

type DynamoStore struct {
	api   DynamoAPI
	table string
}

var _ contractx.DetailStore = (*DynamoStore)(nil)

func NewDynamoStore(api DynamoAPI, table string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("dynamodb client is required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = defaultTableName
	}
	return &DynamoStore{api: api, table: table}, nil
}

func NewDynamoStoreFromConfig(awsCfg aws.Config, table string) (*DynamoStore, error) {
	return NewDynamoStore(dynamodb.NewFromConfig(awsCfg), table)
}

// BatchGet fetches name and address for ids. Unknown ids are omitted from the
// result; any unprocessed key fails the whole call.
func (s *DynamoStore) BatchGet(ctx context.Context, ids []string) (map[string]contractx.Detail, error) {
	ids = dedupe(ids)
	out := make(map[string]contractx.Detail, len(ids))

	for start := 0; start < len(ids); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(ids))

		keys := make([]map[string]ddbtypes.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]ddbtypes.AttributeValue{
				keyAttribute: &ddbtypes.AttributeValueMemberS{Value: id},
			})
		}

		resp, err := s.api.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]ddbtypes.KeysAndAttributes{
				s.table: {
					Keys:                     keys,
					ProjectionExpression:     aws.String(projectionExpr),
					ExpressionAttributeNames: map[string]string{nameAttributeVar: nameAttributeName},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: dynamodb: %w", contractx.ErrDetailLookup, err)
		}
		if pending, ok := resp.UnprocessedKeys[s.table]; ok && len(pending.Keys) > 0 {
			return nil, fmt.Errorf("%w: %d of %d keys", contractx.ErrPartialBatch, len(pending.Keys), len(keys))
		}

		for _, item := range resp.Responses[s.table] {
			d := contractx.Detail{
				ID:      stringAttr(item, keyAttribute),
				Name:    stringAttr(item, nameAttributeName),
				Address: stringAttr(item, "address"),
			}
			if d.ID == "" {
				continue
			}
			out[d.ID] = d
		}
	}
	return out, nil
}

func stringAttr(item map[string]ddbtypes.AttributeValue, name string) string {
	v, ok := item[name].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return v.Value
}
