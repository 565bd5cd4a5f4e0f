package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"portfolio-site/internal/domain"
)

const (
	skCurrent  = "FACTS#"
	skPrefixRv = "REV#"
)

// ErrProfileNotFound is returned when no document exists for a profile ID.
var ErrProfileNotFound = errors.New("repository: profile not found")

// ErrRevisionConflict is returned when the stored revision moved between read and write.
var ErrRevisionConflict = errors.New("repository: profile revision conflict")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// ProfileReader is what startup wiring needs to load page content.
type ProfileReader interface {
	GetProfile(ctx context.Context, profileID string) (domain.ProfileFacts, error)
}

// Revision describes one stored version of a profile document.
type Revision struct {
	Number    int
	UpdatedAt time.Time
}

// Client stores ProfileFacts documents in a DynamoDB table.
//
// Each profile keeps a current item (SK=FACTS#) and one immutable snapshot per
// revision (SK=REV#<zero-padded number>), written together in a transaction.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func profilePK(profileID string) string {
	return "PROFILE#" + profileID
}

// revSK zero-pads so lexical order matches numeric order.
func revSK(n int) string {
	return fmt.Sprintf("%s%08d", skPrefixRv, n)
}

// GetProfile reads the current document for profileID.
func (c *Client) GetProfile(ctx context.Context, profileID string) (domain.ProfileFacts, error) {
	facts, _, err := c.getCurrent(ctx, profileID)
	return facts, err
}

// CurrentRevision returns the stored revision number, or 0 when the profile does not exist yet.
func (c *Client) CurrentRevision(ctx context.Context, profileID string) (int, error) {
	_, rev, err := c.getCurrent(ctx, profileID)
	if errors.Is(err, ErrProfileNotFound) {
		return 0, nil
	}
	return rev, err
}

func (c *Client) getCurrent(ctx context.Context, profileID string) (domain.ProfileFacts, int, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: profilePK(profileID)},
			"SK": &types.AttributeValueMemberS{Value: skCurrent},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.ProfileFacts{}, 0, fmt.Errorf("repository: GetProfile get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ProfileFacts{}, 0, ErrProfileNotFound
	}

	facts, err := itemToProfile(out.Item)
	if err != nil {
		return domain.ProfileFacts{}, 0, fmt.Errorf("repository: GetProfile decode: %w", err)
	}
	rev, err := intAttr(out.Item, "revision")
	if err != nil {
		return domain.ProfileFacts{}, 0, fmt.Errorf("repository: GetProfile decode revision: %w", err)
	}
	return facts, rev, nil
}

// PutProfile stores facts as revision expectedRevision+1. The write fails with
// ErrRevisionConflict if another writer stored a revision in between.
func (c *Client) PutProfile(ctx context.Context, profileID string, facts domain.ProfileFacts, expectedRevision int) (int, error) {
	if strings.TrimSpace(profileID) == "" {
		return 0, errors.New("repository: PutProfile: profile ID is required")
	}
	doc, err := json.Marshal(facts)
	if err != nil {
		return 0, fmt.Errorf("repository: PutProfile marshal: %w", err)
	}

	next := expectedRevision + 1
	updatedAt := c.now().UTC().Format(time.RFC3339)

	current := profileItem(profileID, skCurrent, string(doc), next, updatedAt)
	snapshot := profileItem(profileID, revSK(next), string(doc), next, updatedAt)

	cond := aws.String("attribute_not_exists(PK)")
	var values map[string]types.AttributeValue
	if expectedRevision > 0 {
		cond = aws.String("revision = :rev")
		values = map[string]types.AttributeValue{
			":rev": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedRevision)},
		}
	}

	_, err = c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(c.tableName),
					Item:                      current,
					ConditionExpression:       cond,
					ExpressionAttributeValues: values,
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                snapshot,
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return 0, fmt.Errorf("%w: %v", ErrRevisionConflict, err)
		}
		return 0, fmt.Errorf("repository: PutProfile: %w", err)
	}
	return next, nil
}

// ListRevisions returns up to limit revisions, newest first.
func (c *Client) ListRevisions(ctx context.Context, profileID string, limit int) ([]Revision, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: profilePK(profileID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixRv},
		},
		ProjectionExpression: aws.String("PK, SK, revision, updatedAt"),
		ScanIndexForward:     aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: ListRevisions query: %w", err)
	}

	revs := make([]Revision, 0, len(out.Items))
	for _, item := range out.Items {
		n, err := intAttr(item, "revision")
		if err != nil {
			return nil, fmt.Errorf("repository: ListRevisions decode: %w", err)
		}
		rev := Revision{Number: n}
		if ts, err := strAttr(item, "updatedAt"); err == nil {
			rev.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

func profileItem(profileID, sk, doc string, revision int, updatedAt string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: profilePK(profileID)},
		"SK":        &types.AttributeValueMemberS{Value: sk},
		"profileId": &types.AttributeValueMemberS{Value: profileID},
		"document":  &types.AttributeValueMemberS{Value: doc},
		"revision":  &types.AttributeValueMemberN{Value: strconv.Itoa(revision)},
		"updatedAt": &types.AttributeValueMemberS{Value: updatedAt},
	}
}

func itemToProfile(item map[string]types.AttributeValue) (domain.ProfileFacts, error) {
	doc, err := strAttr(item, "document")
	if err != nil {
		return domain.ProfileFacts{}, err
	}
	var facts domain.ProfileFacts
	if err := json.Unmarshal([]byte(doc), &facts); err != nil {
		return domain.ProfileFacts{}, fmt.Errorf("repository: parse document: %w", err)
	}
	return facts, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
