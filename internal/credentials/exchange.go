package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// roleDuration is how long assumed-role credentials stay valid.
const roleDuration = 3600

// Exchanger swaps base credentials for temporary role credentials through
// a secure token service. The resolver only sees this interface, so tests
// substitute a stub instead of calling AWS.
type Exchanger interface {
	Exchange(ctx context.Context, base aws.Credentials, roleARN, sessionName, region string) (aws.Credentials, error)
}

// STSExchanger performs the exchange against AWS STS.
type STSExchanger struct{}

// Exchange calls sts:AssumeRole with the base credentials and returns the
// temporary credential set, expiration included.
func (STSExchanger) Exchange(ctx context.Context, base aws.Credentials, roleARN, sessionName, region string) (aws.Credentials, error) {
	cfg := aws.Config{
		Region: region,
		Credentials: awscreds.NewStaticCredentialsProvider(
			base.AccessKeyID, base.SecretAccessKey, base.SessionToken),
	}
	client := sts.NewFromConfig(cfg)

	out, err := client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(roleDuration),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("sts assume role %s: %w", roleARN, err)
	}

	c := out.Credentials
	return aws.Credentials{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
		CanExpire:       true,
		Expires:         aws.ToTime(c.Expiration),
	}, nil
}
