package receipt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/microservices/pos/domain/dao"
)

func TestRender(t *testing.T) {
	pdf, err := Render(dao.Order{
		OrderNumber:  "ORD_20240501_001",
		CustomerName: "Zoë",
		OrderType:    dao.OrderTypeDineIn,
		TableNumber:  4,
		Subtotal:     20,
		Tax:          2,
		Discount:     2,
		TotalAmount:  20,
		Items: []dao.OrderItem{
			{Name: "Cola", Quantity: 1, Price: 5},
			{Name: "Tiramisu", Quantity: 1, Price: 15, Notes: "no cocoa"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$2.00", money(2.0000000000000004))
	assert.Equal(t, "$13.37", money(13.37))
	assert.Equal(t, "$-2.50", money(-2.5))
}

type fakeUploader struct {
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3manager.UploadOutput{Location: "s3://" + *in.Bucket + "/" + *in.Key}, nil
}

func TestArchive(t *testing.T) {
	up := &fakeUploader{}
	a := NewArchiver(up, "pos-receipts", "receipts/")

	loc, err := a.Archive(context.Background(), "ORD_1", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "s3://pos-receipts/receipts/ORD_1.pdf", loc)
	assert.Equal(t, "application/pdf", aws.StringValue(up.input.ContentType))
	assert.Equal(t, []byte("%PDF-1.3"), up.body)
}

func TestArchive_Error(t *testing.T) {
	a := NewArchiver(&fakeUploader{err: errors.New("denied")}, "b", "")
	_, err := a.Archive(context.Background(), "ORD_1", nil)
	assert.ErrorContains(t, err, "ORD_1")
}

func TestNewS3Archiver_RequiresBucket(t *testing.T) {
	_, err := NewS3Archiver(config.ReceiptsConfig{S3Region: "us-east-1"})
	assert.Error(t, err)
}
