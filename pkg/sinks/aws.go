package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// awsConfig resolves region and credentials. Static keys replace the default chain.
func awsConfig(ctx context.Context, region string, keys *AWSKeys) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if keys != nil && keys.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(keys.AccessKeyID, keys.SecretAccessKey, keys.SessionToken),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func openSQS(ctx context.Context, spec Spec, log Logger) (Sink, error) {
	q := spec.SQS
	if q == nil {
		return nil, fmt.Errorf("sqs block is required")
	}
	cfg, err := awsConfig(ctx, q.Region, q.Keys)
	if err != nil {
		return nil, err
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if q.Endpoint != "" {
			o.BaseEndpoint = aws.String(q.Endpoint)
		}
	})
	return newSQSSink(spec.Name, q.QueueURL, client, log), nil
}

func newSQSSink(name, queueURL string, api sqsAPI, log Logger) *brokerSink {
	return &brokerSink{
		name: name,
		kind: KindSQS,
		log:  orNop(log),
		deliver: func(ctx context.Context, msg Message) (string, error) {
			out, err := api.SendMessage(ctx, &sqs.SendMessageInput{
				QueueUrl:    aws.String(queueURL),
				MessageBody: aws.String(string(msg.Body)),
				MessageAttributes: map[string]sqstypes.MessageAttributeValue{
					AttrEventType: {DataType: aws.String("String"), StringValue: aws.String(msg.EventType)},
				},
			})
			if err != nil {
				return "", fmt.Errorf("sqs send message: %w", err)
			}
			return aws.ToString(out.MessageId), nil
		},
	}
}

func openSNS(ctx context.Context, spec Spec, log Logger) (Sink, error) {
	t := spec.SNS
	if t == nil {
		return nil, fmt.Errorf("sns block is required")
	}
	cfg, err := awsConfig(ctx, t.Region, t.Keys)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if t.Endpoint != "" {
			o.BaseEndpoint = aws.String(t.Endpoint)
		}
	})
	return newSNSSink(spec.Name, t.TopicARN, client, log), nil
}

func newSNSSink(name, topicARN string, api snsAPI, log Logger) *brokerSink {
	return &brokerSink{
		name: name,
		kind: KindSNS,
		log:  orNop(log),
		deliver: func(ctx context.Context, msg Message) (string, error) {
			out, err := api.Publish(ctx, &sns.PublishInput{
				TopicArn: aws.String(topicARN),
				Message:  aws.String(string(msg.Body)),
				MessageAttributes: map[string]snstypes.MessageAttributeValue{
					AttrEventType: {DataType: aws.String("String"), StringValue: aws.String(msg.EventType)},
				},
			})
			if err != nil {
				return "", fmt.Errorf("sns publish: %w", err)
			}
			return aws.ToString(out.MessageId), nil
		},
	}
}
