package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
	"stillwriter/internal/screenplay"
)

// DynamoDB key constants for the single-table design.
const (
	pkImagePrefix      = "IMAGE#"
	pkAssetPrefix      = "ASSET#"
	pkScreenplayPrefix = "SCREENPLAY#"
	skMeta             = "META"

	// galleryIndex is the GSI ordering screenplays by creation time.
	galleryIndex = "GalleryIndex"

	// galleryPartition is the fixed GSI partition all screenplays share so a
	// single Query walks the whole listing newest-first.
	galleryPartition = "SCREENPLAY"
)

// errConditionFailed signals a lost conditional write; internal to this file.
var errConditionFailed = errors.New("conditional write lost")

// dynamoTable holds the shared client/table pair and the low-level item
// helpers both stores build on.
type dynamoTable struct {
	client    *dynamodb.Client
	tableName string
}

// putItem marshals a record and writes it under the given keys. An optional
// condition expression guards the write; extra attributes (index keys) are
// merged in after marshalling.
func (t *dynamoTable) putItem(ctx context.Context, pk, sk string, data any, condition string, extra map[string]types.AttributeValue) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", apperr.ErrStorage, err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	for k, v := range extra {
		item[k] = v
	}

	input := &dynamodb.PutItemInput{
		TableName: &t.tableName,
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	if _, err := t.client.PutItem(ctx, input); err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return errConditionFailed
		}
		return fmt.Errorf("%w: PutItem PK=%s SK=%s: %v", apperr.ErrStorage, pk, sk, err)
	}
	return nil
}

// getItem reads one item into out. Returns false if the item does not exist.
func (t *dynamoTable) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &t.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: GetItem PK=%s SK=%s: %v", apperr.ErrStorage, pk, sk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("%w: unmarshal PK=%s SK=%s: %v", apperr.ErrStorage, pk, sk, err)
	}
	return true, nil
}

// --- ImageStore ---

// DynamoImageStore implements ImageStore on the single table.
type DynamoImageStore struct {
	dynamoTable
}

// Compile-time interface check.
var _ ImageStore = (*DynamoImageStore)(nil)

// NewDynamoImageStore creates an image store over the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoImageStore(client *dynamodb.Client, tableName string) *DynamoImageStore {
	return &DynamoImageStore{dynamoTable{client: client, tableName: tableName}}
}

// Create inserts the image record guarded by a condition on the digest key,
// so exactly one record ever owns a digest. The loser of a concurrent create
// reads back and adopts the winner's record. A mirror item keyed by asset id
// is written after a winning create for Get lookups.
func (s *DynamoImageStore) Create(ctx context.Context, rec ImageRecord) (ImageRecord, bool, error) {
	pk := pkImagePrefix + rec.Digest

	err := s.putItem(ctx, pk, skMeta, rec, "attribute_not_exists(PK)", nil)
	if errors.Is(err, errConditionFailed) {
		existing, findErr := s.FindByDigest(ctx, rec.Digest)
		if findErr != nil {
			return ImageRecord{}, false, findErr
		}
		if existing == nil {
			return ImageRecord{}, false, fmt.Errorf("%w: digest %s vanished after conditional failure", apperr.ErrStorage, rec.Digest)
		}
		log.Debug().Str("digest", rec.Digest).Str("asset_id", existing.AssetID).Msg("Adopted existing image record after lost create race")
		return *existing, false, nil
	}
	if err != nil {
		return ImageRecord{}, false, err
	}

	if err := s.putItem(ctx, pkAssetPrefix+rec.AssetID, skMeta, rec, "", nil); err != nil {
		return ImageRecord{}, false, err
	}
	return rec, true, nil
}

// FindByDigest retrieves the image record owning a digest, or nil.
func (s *DynamoImageStore) FindByDigest(ctx context.Context, digest string) (*ImageRecord, error) {
	var rec ImageRecord
	found, err := s.getItem(ctx, pkImagePrefix+digest, skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// Get retrieves an image record by asset id, or nil.
func (s *DynamoImageStore) Get(ctx context.Context, assetID string) (*ImageRecord, error) {
	var rec ImageRecord
	found, err := s.getItem(ctx, pkAssetPrefix+assetID, skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// --- ScreenplayStore ---

// DynamoScreenplayStore implements ScreenplayStore on the single table.
type DynamoScreenplayStore struct {
	dynamoTable
}

// Compile-time interface check.
var _ ScreenplayStore = (*DynamoScreenplayStore)(nil)

// NewDynamoScreenplayStore creates a screenplay store over the given table.
func NewDynamoScreenplayStore(client *dynamodb.Client, tableName string) *DynamoScreenplayStore {
	return &DynamoScreenplayStore{dynamoTable{client: client, tableName: tableName}}
}

// Put creates or replaces a screenplay record, serializing the structured
// scene to its wire form and attaching the gallery index attributes.
func (s *DynamoScreenplayStore) Put(ctx context.Context, rec ScreenplayRecord) error {
	if rec.Structured != nil {
		body, err := json.Marshal(rec.Structured)
		if err != nil {
			return fmt.Errorf("%w: marshal structured scene: %v", apperr.ErrStorage, err)
		}
		rec.StructuredJSON = string(body)
	}

	extra := map[string]types.AttributeValue{
		"GSI1PK": &types.AttributeValueMemberS{Value: galleryPartition},
		"GSI1SK": &types.AttributeValueMemberS{Value: gallerySortKey(rec.CreatedAt, rec.ID)},
	}
	return s.putItem(ctx, pkScreenplayPrefix+rec.ID, skMeta, rec, "", extra)
}

// Get retrieves a screenplay record by id, or nil.
func (s *DynamoScreenplayStore) Get(ctx context.Context, id string) (*ScreenplayRecord, error) {
	var rec ScreenplayRecord
	found, err := s.getItem(ctx, pkScreenplayPrefix+id, skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := decodeStructured(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List walks the gallery index newest-first, one page at a time. The cursor
// is the encoded ExclusiveStartKey of the next page.
func (s *DynamoScreenplayStore) List(ctx context.Context, opts ListOptions) (*Page, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = GalleryPageSize
	}

	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String(galleryIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: galleryPartition},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if opts.PublicOnly {
		input.FilterExpression = aws.String("#public = :true")
		input.ExpressionAttributeNames = map[string]string{"#public": "public"}
		input.ExpressionAttributeValues[":true"] = &types.AttributeValueMemberBOOL{Value: true}
	}
	if opts.Cursor != "" {
		startKey, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		input.ExclusiveStartKey = startKey
	}

	items := make([]ScreenplayRecord, 0, pageSize)
	var nextCursor string

	// A filtered Query page can come back short; keep following
	// LastEvaluatedKey until the page fills or the index is exhausted.
	// Limiting each Query to the remaining room keeps LastEvaluatedKey
	// aligned with the last record actually returned.
	for {
		input.Limit = aws.Int32(int32(pageSize - len(items)))
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: Query %s: %v", apperr.ErrStorage, galleryIndex, err)
		}

		for _, item := range result.Items {
			if len(items) == pageSize {
				break
			}
			var rec ScreenplayRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("%w: unmarshal listing item: %v", apperr.ErrStorage, err)
			}
			if err := decodeStructured(&rec); err != nil {
				return nil, err
			}
			items = append(items, rec)
		}

		if result.LastEvaluatedKey == nil {
			nextCursor = ""
			break
		}
		if len(items) == pageSize {
			cursor, err := encodeCursor(result.LastEvaluatedKey)
			if err != nil {
				return nil, err
			}
			nextCursor = cursor
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return &Page{Items: items, NextCursor: nextCursor}, nil
}

// gallerySortKey orders the gallery index by creation time then id, so two
// records created in the same nanosecond still sort deterministically.
func gallerySortKey(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

// decodeStructured rehydrates the typed scene from its stored wire form.
func decodeStructured(rec *ScreenplayRecord) error {
	if rec.StructuredJSON == "" {
		return nil
	}
	var scene screenplay.Scene
	if err := json.Unmarshal([]byte(rec.StructuredJSON), &scene); err != nil {
		return fmt.Errorf("%w: decode stored scene %s: %v", apperr.ErrStorage, rec.ID, err)
	}
	rec.Structured = &scene
	return nil
}

// cursorKey is the serializable form of a DynamoDB ExclusiveStartKey for the
// gallery index (table keys plus index keys).
type cursorKey struct {
	PK     string `json:"pk"`
	SK     string `json:"sk"`
	GSI1PK string `json:"gsi1pk"`
	GSI1SK string `json:"gsi1sk"`
}

func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	ck := cursorKey{}
	for name, dst := range map[string]*string{"PK": &ck.PK, "SK": &ck.SK, "GSI1PK": &ck.GSI1PK, "GSI1SK": &ck.GSI1SK} {
		attr, ok := key[name].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("%w: unexpected cursor key shape (%s)", apperr.ErrStorage, name)
		}
		*dst = attr.Value
	}
	body, err := json.Marshal(ck)
	if err != nil {
		return "", fmt.Errorf("%w: encode cursor: %v", apperr.ErrStorage, err)
	}
	return base64.RawURLEncoding.EncodeToString(body), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	body, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", apperr.ErrStorage)
	}
	var ck cursorKey
	if err := json.Unmarshal(body, &ck); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", apperr.ErrStorage)
	}
	return map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: ck.PK},
		"SK":     &types.AttributeValueMemberS{Value: ck.SK},
		"GSI1PK": &types.AttributeValueMemberS{Value: ck.GSI1PK},
		"GSI1SK": &types.AttributeValueMemberS{Value: ck.GSI1SK},
	}, nil
}
